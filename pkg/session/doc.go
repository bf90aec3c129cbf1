/*
Package session serialises access to stored conversations.

The Manager guarantees that two turns of the same conversation never
interleave: each read-modify-write runs under a per-conversation lock held
in memory and, when a DistributedLocker is configured, across replicas.
*/
package session
