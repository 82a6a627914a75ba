// Package tool wraps the external binaries the pipeline shells out to:
// a downloader, an audio extractor, a transcriber, a tokenizer, an
// analyzer, and a title-selection helper.
//
// Every adapter runs its subprocess under a caller-supplied context
// deadline, so a stuck or hung subprocess is treated as a retryable
// failure rather than a pipeline stall: the process is killed when the
// context is done and a plain error surfaces to the caller.
package tool
