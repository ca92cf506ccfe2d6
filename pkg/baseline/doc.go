/*
Package baseline loads the baseline dataset: a snapshot of the game's data
folder, listed by a newline-delimited manifest and fetched lazily.

A Loader fetches the manifest on first use, then every document it lists, and
latches the result. Later calls reuse the latched collection and never touch
the network again. A failed manifest fetch leaves the Loader unloaded so the
next call retries; a failed document is logged and left out.

Fetchers abstract where documents come from: HTTPFetcher resolves locations
against a base URL, FSFetcher reads them from a local snapshot directory.
BuildManifest produces the manifest for such a snapshot.
*/
package baseline
