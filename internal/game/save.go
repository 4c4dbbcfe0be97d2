package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// EncodeSave serializes the whole studio as one document.
func EncodeSave(s StudioState) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return raw, nil
}

// DecodeSave parses a save document. Numeric fields go through SafeNum, so
// a value like "not-a-number" loads as 0; missing fields get their defaults.
// Any structural error is wrapped in ErrCorruptSave.
func DecodeSave(raw []byte, rng Rand, cat *Catalog) (StudioState, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return StudioState{}, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}
	if doc == nil {
		return StudioState{}, fmt.Errorf("%w: empty document", ErrCorruptSave)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return StudioState{}, fmt.Errorf("%w: trailing data after document", ErrCorruptSave)
	}

	var s StudioState
	md, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       safeNumberHook,
		Result:           &s,
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return StudioState{}, fmt.Errorf("save decoder: %w", err)
	}
	if err := md.Decode(doc); err != nil {
		return StudioState{}, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}
	normalize(rng, cat, &s)
	return s, nil
}

func safeNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, ok := data.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
		}
		// Out-of-range values are as corrupt as NaN.
		f := math.Floor(SafeNum(data))
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return int64(0), nil
		}
		return int64(f), nil
	case reflect.Float32, reflect.Float64:
		return SafeNum(data), nil
	}
	return data, nil
}

func normalize(rng Rand, cat *Catalog, s *StudioState) {
	if s.StudioName == "" {
		s.StudioName = DefaultStudioName
	}
	if s.TurnNumber < 1 {
		s.TurnNumber = 1
	}
	if s.LoanBalance < 0 {
		s.LoanBalance = 0
	}
	s.MarketSharePercent = ClampShare(s.MarketSharePercent)

	if s.UpgradeLevels == nil {
		s.UpgradeLevels = map[string]int{}
	}
	for id, lvl := range s.UpgradeLevels {
		top := lvl
		if u, ok := cat.Upgrade(id); ok {
			top = u.MaxLevel
		}
		s.UpgradeLevels[id] = clampInt(lvl, 0, top)
	}

	if len(s.Competitors) == 0 {
		s.Competitors = seedCompetitors(rng, cat, LoadCompetitorJitter)
	}
	for i := range s.Competitors {
		s.Competitors[i].Share = math.Max(MinCompetitorShare, s.Competitors[i].Share)
	}

	if !s.ActiveTrend.Valid() {
		s.ActiveTrend = NeutralTrend()
	}

	projects := make([]Project, 0, len(s.ActiveProjects))
	for _, p := range s.ActiveProjects {
		if !p.Stage.Launched() {
			continue
		}
		if p.Cast == nil {
			p.Cast = []Talent{}
		}
		if p.ReleaseChannel != ChannelStreaming {
			p.ReleaseChannel = ChannelCinema
		}
		projects = append(projects, p)
	}
	s.ActiveProjects = projects

	if s.ReleaseHistory == nil {
		s.ReleaseHistory = []ReleaseRecord{}
	}
	if s.Franchises == nil {
		s.Franchises = []Franchise{}
	}
	if s.OwnedRights == nil {
		s.OwnedRights = []string{}
	}
}
