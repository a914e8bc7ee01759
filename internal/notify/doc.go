// Package notify announces alarm transitions. Every triggered or cleared
// condition becomes an Event that is written to the log and, when brokers
// are configured, published to a Kafka topic keyed by unit and condition.
package notify
