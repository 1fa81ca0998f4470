package route

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
)

// SpecialTag names a dedicated looping function family that replaces the
// generic swap path for a specific asset pair.
type SpecialTag string

const (
	TagNALPHA SpecialTag = "nalpha"
	TagNINSTO SpecialTag = "ninsto"
	TagSPLUME SpecialTag = "splume"
	TagNRWA   SpecialTag = "nrwa"
)

func AllSpecialTags() []SpecialTag {
	return []SpecialTag{TagNALPHA, TagNINSTO, TagSPLUME, TagNRWA}
}

func ParseSpecialTag(input string) (SpecialTag, error) {
	norm := SpecialTag(strings.ToLower(strings.TrimSpace(input)))
	for _, tag := range AllSpecialTags() {
		if tag == norm {
			return tag, nil
		}
	}
	return "", clierr.New(clierr.CodeUsage, fmt.Sprintf("unknown special route tag %q", input))
}

type SpecialPair struct {
	Supply common.Address `json:"supply"`
	Borrow common.Address `json:"borrow"`
	Tag    SpecialTag     `json:"tag"`
}

// SpecialTable maps ordered (supply, borrow) pairs, already normalized to
// wrapped addresses, to their special tag.
type SpecialTable struct {
	entries map[Pair]SpecialTag
	order   []SpecialPair
}

func NewSpecialTable(entries []SpecialPair) (*SpecialTable, error) {
	t := &SpecialTable{entries: make(map[Pair]SpecialTag, len(entries))}
	for i, entry := range entries {
		if err := validatePair(entry.Supply, entry.Borrow); err != nil {
			return nil, clierr.Wrap(clierr.CodeUsage, fmt.Sprintf("special entry %d", i), err)
		}
		tag, err := ParseSpecialTag(string(entry.Tag))
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeUsage, fmt.Sprintf("special entry %d", i), err)
		}
		key := NewPair(entry.Supply, entry.Borrow)
		if existing, ok := t.entries[key]; ok {
			return nil, clierr.New(clierr.CodeUsage, fmt.Sprintf("special entry %d: pair %s already tagged %s", i, key, existing))
		}
		t.entries[key] = tag
		t.order = append(t.order, SpecialPair{Supply: entry.Supply, Borrow: entry.Borrow, Tag: tag})
	}
	return t, nil
}

func (t *SpecialTable) Lookup(pair Pair) (SpecialTag, bool) {
	if t == nil {
		return "", false
	}
	tag, ok := t.entries[pair]
	return tag, ok
}

func (t *SpecialTable) Entries() []SpecialPair {
	if t == nil {
		return nil
	}
	return append([]SpecialPair(nil), t.order...)
}
