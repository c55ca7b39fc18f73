package params

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Keys whose values replace the defaults wholesale instead of merging.
var replacedKeys = []string{"variant_parameters", "starting_variant_mix", "starting_recovered", "age_brackets", "population_by_age"}

// Load reads a YAML (or JSON) parameter file on top of Default.
func Load(path string) (SimulationParameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SimulationParameters{}, err
	}
	p, err := Parse(data)
	if err != nil {
		return SimulationParameters{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML (or JSON) document on top of Default. Unknown keys are
// rejected.
func Parse(data []byte) (SimulationParameters, error) {
	p := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return p, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return SimulationParameters{}, err
	}
	present := topLevelKeys(&root)
	for _, key := range replacedKeys {
		if !present[key] {
			continue
		}
		switch key {
		case "variant_parameters":
			p.Variants = nil
		case "starting_variant_mix":
			p.StartingVariantMix = nil
		case "starting_recovered":
			p.StartingRecovered = nil
		case "age_brackets":
			p.AgeBrackets = nil
		case "population_by_age":
			p.PopulationByAge = nil
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return SimulationParameters{}, err
	}

	for name, variant := range p.Variants {
		if variant.Name == "" {
			variant.Name = name
			p.Variants[name] = variant
		}
	}
	return p, nil
}

// Marshal renders parameters as YAML with stable key order.
func Marshal(p SimulationParameters) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func topLevelKeys(root *yaml.Node) map[string]bool {
	keys := map[string]bool{}
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return keys
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		keys[doc.Content[i].Value] = true
	}
	return keys
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
