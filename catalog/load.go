package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"

	yaml "go.yaml.in/yaml/v3"
)

type document struct {
	WeightedRandom []WeightedRandom `yaml:"weightedRandom"`
	Voicelines     []Voiceline      `yaml:"voicelines"`
}

// Load reads a catalog document. Unknown fields are rejected.
//
//	weightedRandom:
//	  - id: VendingMachineAds
//	    weights: {AdvertCola: 2, AdvertChips: 1}
//	voicelines:
//	  - id: AdvertCola
//	    message: advertisement-cola-1
//	    audio: /Audio/Voice/cola.ogg
func Load(r io.Reader) (*Store, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	doc := document{}
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	s := NewStore()

	for _, w := range doc.WeightedRandom {
		if err := s.AddWeightedRandom(w); err != nil {
			return nil, err
		}
	}

	for _, v := range doc.Voicelines {
		if err := s.AddVoiceline(v); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// LoadFile reads a catalog document from a file.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	s, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}
