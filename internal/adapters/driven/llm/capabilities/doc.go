// Package capabilities implements the two LLM-backed steps of answering a
// question: routing it to a slice of the repository and composing the
// answer. Both degrade instead of failing: the router falls back to the
// general route and the composer returns an error text as the answer.
package capabilities
