// Package readings records every environment reading.
//
// FileLog appends one comma separated line per reading; Postgres inserts
// rows into a database table. Multi fans a reading out to several sinks.
package readings
