// Package services holds the application core: query analysis, retrieval
// orchestration, collection management, ingestion, update checks and the
// scheduler. Services implement the driving ports and reach infrastructure
// only through the driven ports, so every adapter can be swapped for an
// in-memory one in tests.
package services
