//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Job input parsing.
//
// A conversion job is described by a JSON document mirroring the applet
// input model: object-store locations, sequencing library information that
// becomes file properties, converter options and flags, plus free-form tags
// and property overrides.
//
package job

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/StanfordBioinformatics/scgpm-demux/core"
	"github.com/pkg/errors"
)

// Converter option keys passed through with values.
var optionKeys = []string{
	"barcode_mismatches",
	"tiles",
	"use_bases_mask",
}

// Converter flag keys passed through when true.
var flagKeys = []string{
	"create_fastq_for_index_reads",
	"ignore_missing_bcls",
	"ignore_missing_filter",
	"ignore_missing_positions",
	"with_failed_reads",
}

type Inputs struct {
	// Object store locations. Used for staging, never added to properties.
	Bucket        string
	ProjectFolder string
	LaneDataTar   string
	MetadataTar   string
	BarcodesKey   string

	// Sequencing library information, added to file properties.
	RunName     string
	LaneIndex   int
	LibraryName string
	ProjectName string

	// Converter configuration, also added to file properties.
	Options map[string]string
	Flags   []string

	// Optional descriptive metadata.
	Tags       []string
	Properties map[string]string
}

func mapString(jsonDef map[string]interface{}, key string) (string, bool) {
	iface, found := jsonDef[key]
	if !found || iface == nil {
		return "", false
	}
	str, ok := iface.(string)
	return str, ok
}

func mapInt(jsonDef map[string]interface{}, key string) (int, bool) {
	iface, found := jsonDef[key]
	if !found || iface == nil {
		return 0, false
	}
	switch num := iface.(type) {
	case float64:
		return int(num), true
	case int:
		return num, true
	}
	return 0, false
}

func mapBool(jsonDef map[string]interface{}, key string) (bool, bool) {
	iface, found := jsonDef[key]
	if !found || iface == nil {
		return false, false
	}
	b, ok := iface.(bool)
	return b, ok
}

func mapStringArray(jsonDef map[string]interface{}, key string) ([]string, bool) {
	iface, found := jsonDef[key]
	if !found || iface == nil {
		return nil, false
	}
	array, ok := iface.([]interface{})
	if !ok {
		return nil, false
	}
	stringArr := make([]string, len(array))
	for i, item := range array {
		str, ok := item.(string)
		if !ok {
			return nil, false
		}
		stringArr[i] = str
	}
	return stringArr, true
}

func mapStringMap(jsonDef map[string]interface{}, key string) (map[string]string, bool) {
	iface, found := jsonDef[key]
	if !found || iface == nil {
		return nil, false
	}
	object, ok := iface.(map[string]interface{})
	if !ok {
		return nil, false
	}
	stringMap := map[string]string{}
	for key, value := range object {
		stringMap[key] = valueString(value)
	}
	return stringMap, true
}

// Render an arbitrary JSON scalar as a string for properties and options.
func valueString(iface interface{}) string {
	switch value := iface.(type) {
	case string:
		return value
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	}
	return fmt.Sprintf("%v", iface)
}

// ParseInputs stratifies a raw job input document into functional
// categories and validates the required fields.
func ParseInputs(jsonDef map[string]interface{}) (*Inputs, error) {
	self := &Inputs{
		Options:    map[string]string{},
		Flags:      []string{},
		Tags:       []string{},
		Properties: map[string]string{},
	}

	var ok bool
	required := []struct {
		key string
		dst *string
	}{
		{"bucket", &self.Bucket},
		{"project_folder", &self.ProjectFolder},
		{"lane_data_tar", &self.LaneDataTar},
		{"metadata_tar", &self.MetadataTar},
		{"run_name", &self.RunName},
		{"library_name", &self.LibraryName},
	}
	for _, req := range required {
		if *req.dst, ok = mapString(jsonDef, req.key); !ok {
			return nil, errors.Errorf("job: missing required input %s", req.key)
		}
	}
	if self.LaneIndex, ok = mapInt(jsonDef, "lane_index"); !ok {
		return nil, errors.Errorf("job: missing required input lane_index")
	}
	if self.LaneIndex < 1 || self.LaneIndex > 8 {
		return nil, errors.Errorf("job: lane_index %d out of range (1-8)", self.LaneIndex)
	}

	self.BarcodesKey, _ = mapString(jsonDef, "barcodes_file")
	self.ProjectName, _ = mapString(jsonDef, "project_name")

	for _, key := range optionKeys {
		if iface, found := jsonDef[key]; found && iface != nil {
			self.Options[key] = valueString(iface)
		}
	}
	for _, key := range flagKeys {
		if value, ok := mapBool(jsonDef, key); ok && value {
			self.Flags = append(self.Flags, key)
		}
	}
	sort.Strings(self.Flags)

	if tags, ok := mapStringArray(jsonDef, "tags"); ok {
		self.Tags = tags
	}
	if properties, ok := mapStringMap(jsonDef, "properties"); ok {
		core.LogInfo("inputs", "Extra properties will overwrite derived sample properties.")
		self.Properties = properties
	}
	return self, nil
}

// ParseInputsFile reads and parses a job input JSON file.
func ParseInputsFile(path string) (*Inputs, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "job: could not read inputs file %s", path)
	}
	jsonDef := map[string]interface{}{}
	if err := json.Unmarshal(bytes, &jsonDef); err != nil {
		return nil, errors.Wrapf(err, "job: could not parse inputs file %s", path)
	}
	return ParseInputs(jsonDef)
}

func (self *Inputs) HasBarcodes() bool {
	return len(self.BarcodesKey) > 0
}

// SampleProperties builds the base property set attached to every uploaded
// file: the library information plus any caller-supplied overrides.
func (self *Inputs) SampleProperties() map[string]string {
	properties := map[string]string{
		"run_name":     self.RunName,
		"lane_index":   strconv.Itoa(self.LaneIndex),
		"library_name": self.LibraryName,
	}
	if len(self.ProjectName) > 0 {
		properties["project_name"] = self.ProjectName
	}
	for key, value := range self.Properties {
		properties[key] = value
	}
	return properties
}
