package plan

import (
	"reflect"
	"testing"

	"bideorai/internal/media/ffprobe"
	"bideorai/internal/probe"
	"bideorai/internal/testsupport"
)

var defaultTargets = Targets{VideoCodec: "h264", AudioCodec: "aac"}

func inventory(video, audio string, subtitleLangs ...string) probe.MediaInventory {
	inv := probe.MediaInventory{
		Video: []probe.StreamInfo{{CodecType: probe.TypeVideo, CodecName: video}},
		Audio: []probe.StreamInfo{{CodecType: probe.TypeAudio, CodecName: audio, Index: 1}},
	}
	for i, lang := range subtitleLangs {
		inv.Subtitles = append(inv.Subtitles, probe.StreamInfo{CodecType: probe.TypeSubtitle, CodecName: "subrip", Language: lang, TypeIndex: i, Index: i + 2})
	}
	return inv
}

func TestBuildCodecLaws(t *testing.T) {
	codecs := []string{"h264", "H264", "hevc", "av1", "aac", "ac3", "opus", "unknown", ""}
	for _, video := range codecs {
		for _, audio := range codecs {
			p := Build(inventory(video, audio), defaultTargets)
			wantVideo := ActionEncode
			if video == "h264" || video == "H264" {
				wantVideo = ActionCopy
			}
			wantAudio := ActionEncode
			if audio == "aac" {
				wantAudio = ActionCopy
			}
			if p.Video != wantVideo || p.Audio != wantAudio {
				t.Fatalf("Build(%q,%q) = %s, want video=%s audio=%s", video, audio, p, wantVideo, wantAudio)
			}
		}
	}
}

func TestBuildConcreteScenario(t *testing.T) {
	got := Build(inventory("h264", "ac3", "eng"), defaultTargets)
	want := TranscodePlan{
		Video:       ActionCopy,
		Audio:       ActionEncode,
		VideoStream: 0,
		AudioStream: 1,
		Subtitles:   []SubtitleSelection{{Index: 0, Language: "eng"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected plan %+v, want %+v", got, want)
	}
}

func TestBuildSubtitleLanguages(t *testing.T) {
	got := Build(inventory("hevc", "aac", "", "fre", "en", "xyz"), defaultTargets)
	want := []SubtitleSelection{{0, ""}, {1, "fra"}, {2, "eng"}, {3, "xyz"}}
	if !reflect.DeepEqual(got.Subtitles, want) {
		t.Fatalf("unexpected subtitles %+v", got.Subtitles)
	}
	if got.String() != "video=encode audio=copy subtitles=[0:unspecified 1:fra 2:eng 3:xyz]" {
		t.Fatalf("unexpected string %q", got.String())
	}
}

func TestBuildUsesFirstAudioStream(t *testing.T) {
	inv := inventory("h264", "ac3")
	inv.Audio = append(inv.Audio, probe.StreamInfo{CodecType: probe.TypeAudio, CodecName: "aac", TypeIndex: 1, Index: 2})
	p := Build(inv, defaultTargets)
	if p.Audio != ActionEncode {
		t.Fatalf("expected first audio stream to decide, got %s", p.Audio)
	}
	if p.AudioStream != 1 {
		t.Fatalf("expected first audio stream to be mapped, got index %d", p.AudioStream)
	}
}

func TestBuildSkipsCoverArtBeforeVideo(t *testing.T) {
	result, err := ffprobe.Parse(testsupport.ProbeJSON("Matroska / WebM",
		testsupport.ProbeStream{CodecType: "video", CodecName: "mjpeg", AttachedPic: true},
		testsupport.ProbeStream{CodecType: "video", CodecName: "h264"},
		testsupport.ProbeStream{CodecType: "audio", CodecName: "aac", Language: "eng"},
	))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	inv, err := probe.Validate(result, "/media/show.mkv", "Matroska / WebM", ".mkv")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	p := Build(inv, defaultTargets)
	if p.Video != ActionCopy || p.VideoStream != 1 {
		t.Fatalf("expected h264 stream 1 to be copied, got video=%s stream=%d", p.Video, p.VideoStream)
	}
	if p.AudioStream != 2 {
		t.Fatalf("expected audio stream 2, got %d", p.AudioStream)
	}
}
