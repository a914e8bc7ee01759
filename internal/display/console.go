package display

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/oshokin/greenhouse-monitor/internal/domain/alarm"
	"github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"
)

// Frame is everything printed for one cycle.
type Frame struct {
	Unit     string
	Reading  greenhouse.Reading
	Target   greenhouse.Setpoints
	Controls greenhouse.Controls
	Alarms   iter.Seq2[string, time.Time]
}

// Console writes frames to w.
type Console struct {
	w io.Writer
}

// NewConsole returns a console presenter writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Banner prints the title line shown once at startup.
func (c *Console) Banner(unit string) error {
	_, err := fmt.Fprintf(c.w, "%s Greenhouse Controller\n", unit)

	return err
}

// Frame prints the reading, setpoints, controls and alarm list.
func (c *Console) Frame(f Frame) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\nUnit: %s %s\nReadings\t%s\n",
		f.Unit, f.Reading.Timestamp.Format(time.ANSIC), f.Reading)
	fmt.Fprintf(&b, "Setpoints\tT: %5.1fC\tH: %5.1f%%\n", f.Target.Temperature, f.Target.Humidity)
	fmt.Fprintf(&b, "Controls\t%s\n", f.Controls)

	writeAlarms(&b, f.Alarms)

	_, err := io.WriteString(c.w, b.String())

	return err
}

// Alarms prints only the alarm list.
func (c *Console) Alarms(alarms iter.Seq2[string, time.Time]) error {
	var b strings.Builder

	writeAlarms(&b, alarms)

	_, err := io.WriteString(c.w, b.String())

	return err
}

// writeAlarms prints one line per alarm, or the no-alarm line if the
// sequence yields nothing.
func writeAlarms(b *strings.Builder, alarms iter.Seq2[string, time.Time]) {
	b.WriteString("\nAlarms\n")

	empty := true

	if alarms != nil {
		for name, at := range alarms {
			empty = false

			fmt.Fprintf(b, "%s %s\n", name, at.Format(time.ANSIC))
		}
	}

	if empty {
		b.WriteString(alarm.NoAlarm.Name() + "\n")
	}
}
