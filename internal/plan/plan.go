// Package plan decides per-track copy or encode actions for a packaging run.
package plan

import (
	"fmt"
	"strings"

	"bideorai/internal/language"
	"bideorai/internal/probe"
)

// Action is the treatment applied to an elementary stream.
type Action string

const (
	// ActionCopy passes the encoded stream through unchanged.
	ActionCopy Action = "copy"
	// ActionEncode re-encodes the stream to the target codec.
	ActionEncode Action = "encode"
)

// Targets holds the delivery codecs.
type Targets struct {
	VideoCodec string
	AudioCodec string
}

// SubtitleSelection is one subtitle stream chosen for extraction.
type SubtitleSelection struct {
	// Index is the stream's position among subtitle streams.
	Index int
	// Language is an ISO 639-2 code, or "" when unspecified.
	Language string
}

// TranscodePlan is the immutable decision record for one input.
type TranscodePlan struct {
	Video Action
	Audio Action
	// VideoStream and AudioStream are the container-wide indices of the
	// streams the actions were decided for.
	VideoStream int
	AudioStream int
	Subtitles   []SubtitleSelection
}

// Build derives the plan from an inventory. The audio decision follows the
// first audio stream, which is the one carried into the intermediate file.
func Build(inv probe.MediaInventory, targets Targets) TranscodePlan {
	p := TranscodePlan{
		Video: ActionEncode,
		Audio: ActionEncode,
	}
	if len(inv.Video) > 0 {
		p.VideoStream = inv.Video[0].Index
		if codecMatches(inv.Video[0].CodecName, targets.VideoCodec) {
			p.Video = ActionCopy
		}
	}
	if len(inv.Audio) > 0 {
		p.AudioStream = inv.Audio[0].Index
		if codecMatches(inv.Audio[0].CodecName, targets.AudioCodec) {
			p.Audio = ActionCopy
		}
	}
	for _, s := range inv.Subtitles {
		p.Subtitles = append(p.Subtitles, SubtitleSelection{
			Index:    s.TypeIndex,
			Language: language.Canonical(s.Language),
		})
	}
	return p
}

// String renders the plan for logs and dry-run summaries.
func (p TranscodePlan) String() string {
	subs := make([]string, 0, len(p.Subtitles))
	for _, s := range p.Subtitles {
		lang := s.Language
		if lang == "" {
			lang = "unspecified"
		}
		subs = append(subs, fmt.Sprintf("%d:%s", s.Index, lang))
	}
	return fmt.Sprintf("video=%s audio=%s subtitles=[%s]", p.Video, p.Audio, strings.Join(subs, " "))
}

func codecMatches(codec, target string) bool {
	codec = strings.TrimSpace(codec)
	target = strings.TrimSpace(target)
	return codec != "" && target != "" && strings.EqualFold(codec, target)
}
