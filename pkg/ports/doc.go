/*
Package ports defines the driven ports (interfaces) of shipyard.

These interfaces decouple the pipeline from concrete backends, so sessions can
keep uploads in memory or in Redis and the baseline can come from HTTP or a
local snapshot.

# Key Interfaces

  - UploadStore: Holds the documents uploaded to each session.
  - Fetcher: Retrieves a text document by location.
*/
package ports
