// Package transcode produces the intermediate MP4 and extracted WebVTT
// subtitles that the packager consumes.
//
// The main ffmpeg invocation maps the first video and first audio stream and
// applies the plan's copy or encode action to each independently. Subtitles
// are extracted one ffmpeg call at a time, in plan order; the first failure
// stops the stage.
package transcode
