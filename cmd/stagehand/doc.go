// Command stagehand launches the external conversation-demo pipeline and
// then locates, records, and presents the artifacts the run produced:
// stitched session audio, per-turn clips, subtitles, transcripts, and run
// metadata under the pipeline's output root.
package main
