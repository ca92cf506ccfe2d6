/*
Package session implements the per-user generation context.

A Session owns everything a generation request reads: its baseline loader
(latched once loaded), its upload registry and the aggregator combining the
two. The Manager creates, finds and discards sessions. Uploads live in a
ports.UploadStore, so a Redis-backed manager can pick sessions back up after a
restart.
*/
package session
