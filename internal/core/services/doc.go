// Package services implements the driving port interfaces.
//
//   - IngestService: fetch, truncate, segment, embed and index a repository
//   - QuestionService: the retrieve -> answer pipeline
//   - SessionService: session lifecycle
//
// Work on one session is serialised through a shared SessionLocks table;
// different sessions run concurrently. Services depend only on ports.
package services
