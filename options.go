package vplanet

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// PrimaryConfig is the top-level simulation file, loaded through viper the
// way config.go's smdConfig() loads its TOML/YAML config: a fresh viper
// instance pointed at one file, then queried by key. Per-body physics
// goes through ParseBodyFile below instead, since body files use the
// source's flat "Option Value # comment" line format rather than a
// structured config format.
type PrimaryConfig struct {
	SystemName string
	BodyFiles  []string
	StopTime   float64
	OutputTime float64
	Eta        float64
	Units      map[string]string
}

// LoadPrimaryConfig reads path via viper.New, SetConfigFile and
// ReadInConfig.
func LoadPrimaryConfig(path string) (*PrimaryConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, &InputError{File: path, Reason: err.Error()}
	}

	cfg := &PrimaryConfig{
		SystemName: v.GetString("system_name"),
		BodyFiles:  v.GetStringSlice("body_files"),
		StopTime:   v.GetFloat64("stop_time") * YearSec,
		OutputTime: v.GetFloat64("output_time") * YearSec,
		Eta:        v.GetFloat64("eta"),
		Units:      v.GetStringMapString("units"),
	}
	if cfg.Eta == 0 {
		cfg.Eta = EtaDefault
	}
	if len(cfg.BodyFiles) == 0 {
		return nil, &InputError{File: path, Reason: "no body_files listed"}
	}
	if cfg.StopTime <= 0 {
		return nil, &InputError{File: path, Reason: "stop_time must be positive"}
	}
	return cfg, nil
}

// negativeUnitPrefix is spec.md §6's convention: an option value prefixed
// with '-' is given in the module's internal (cgs) unit rather than the
// file's declared display unit, the inverse of the usual sign meaning.
const negativeUnitPrefix = '-'

// ParseBodyFile reads a per-body option file in the flat "Name Value"
// format (one option per line, '#' starts a trailing comment, blank lines
// ignored), the same bufio.Scanner line-parsing shape config.go's CSV
// ephemeris loader uses for HelioState. Returns the raw option map for
// modules' ReadOptions to consume; unrecognized options are a caller-side
// InputError once every attached module has had a chance to claim a key.
func ParseBodyFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{File: path, Reason: err.Error()}
	}
	defer f.Close()

	opts := make(map[string]string)
	sc := newLineScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, &InputError{File: path, Reason: fmt.Sprintf("line %d: expected \"Option Value\"", lineNo)}
		}
		name := fields[0]
		if _, dup := opts[name]; dup {
			return nil, &InputError{File: path, Option: name, Reason: fmt.Sprintf("duplicate option (line %d)", lineNo)}
		}
		opts[name] = strings.Join(fields[1:], " ")
	}
	if err := sc.Err(); err != nil {
		return nil, &InputError{File: path, Reason: err.Error()}
	}
	return opts, nil
}

// ParseFloatOption applies the negative-unit convention: a leading '-'
// means "value already in internal units, do not convert". It returns the
// magnitude and whether the value was negative-unit-flagged.
func ParseFloatOption(raw string) (value float64, internalUnits bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, fmt.Errorf("empty value")
	}
	if raw[0] == negativeUnitPrefix {
		internalUnits = true
		raw = raw[1:]
	}
	value, err = strconv.ParseFloat(strings.TrimSpace(raw), 64)
	return value, internalUnits, err
}
