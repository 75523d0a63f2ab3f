// Package sbtconf loads and saves SBT build parameters from a simple
// colon-delimited configuration file, one "Key: value" record per line
// with '#' comments.
package sbtconf

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type SBTConf struct {
	D         uint64
	Ksize     uint32
	Num       uint64
	Scaled    uint64
	NTables   uint64
	TableSize uint64
}

var DefaultSBTConf = &SBTConf{
	D:         2,
	Ksize:     31,
	Num:       500,
	Scaled:    0,
	NTables:   1,
	TableSize: 100000,
}

// LoadSBTConf parses a configuration from r, starting from the defaults
// and overriding each key found.
func LoadSBTConf(r io.Reader) (conf *SBTConf, err error) {
	defer func() {
		if perr := recover(); perr != nil {
			err = perr.(error)
		}
	}()
	c := *DefaultSBTConf
	conf = &c

	csvReader := csv.NewReader(r)
	csvReader.Comma = ':'
	csvReader.Comment = '#'
	csvReader.FieldsPerRecord = 2
	csvReader.TrimLeadingSpace = true

	lines, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		atoui := func() uint64 {
			ui64, err := strconv.ParseUint(strings.TrimSpace(line[1]), 10, 64)
			if err != nil {
				panic(err)
			}
			return ui64
		}
		switch line[0] {
		case "D":
			conf.D = atoui()
		case "Ksize":
			conf.Ksize = uint32(atoui())
		case "Num":
			conf.Num = atoui()
		case "Scaled":
			conf.Scaled = atoui()
		case "NTables":
			conf.NTables = atoui()
		case "TableSize":
			conf.TableSize = atoui()
		default:
			return nil, fmt.Errorf("Invalid SBTConf flag: %s", line[0])
		}
	}

	return conf, nil
}

// MaxHash converts the Scaled parameter into the hash cap a Sketch uses:
// max_hash = floor(2^64 / scaled), or 0 when scaling is disabled.
func (conf SBTConf) MaxHash() uint64 {
	if conf.Scaled == 0 {
		return 0
	}
	const maxU64 = ^uint64(0)
	return maxU64 / conf.Scaled
}

func (conf SBTConf) Write(w io.Writer) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = ':'
	csvWriter.UseCRLF = false

	su := func(i uint64) string {
		return fmt.Sprintf("%d", i)
	}
	records := [][]string{
		{"D", su(conf.D)},
		{"Ksize", su(uint64(conf.Ksize))},
		{"Num", su(conf.Num)},
		{"Scaled", su(conf.Scaled)},
		{"NTables", su(conf.NTables)},
		{"TableSize", su(conf.TableSize)},
	}
	if err := csvWriter.WriteAll(records); err != nil {
		return err
	}
	return nil
}
