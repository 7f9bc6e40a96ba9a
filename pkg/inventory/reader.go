/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/carverauto/portradar/pkg/logger"
	"github.com/carverauto/portradar/pkg/models"
)

// minRowFields is the shortest row the reader accepts. Anything shorter is
// usually a file saved with another delimiter.
const minRowFields = 5

// ReadFile opens path and reads it with ReadRecords.
func ReadFile(path string, log logger.Logger) ([]models.PortRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadRecords(f, log)
}

// ReadRecords parses a report written in either layout. Columns are located
// by header name so column order does not matter.
func ReadRecords(r io.Reader, log logger.Logger) ([]models.PortRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInventory
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInventory, err)
	}

	cols := indexHeader(header)

	for _, required := range []string{ColNode, ColInterface} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	statusCol, ok := cols[ColStatus]
	if !ok {
		if statusCol, ok = cols[ColPortStatus]; !ok {
			return nil, fmt.Errorf("%w: %s or %s", ErrMissingColumn, ColStatus, ColPortStatus)
		}
	}

	var records []models.PortRecord

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedInventory, line, err)
		}

		if len(row) < minRowFields {
			log.Warn().Int("line", line).Int("fields", len(row)).
				Msg("Row does not look comma separated, skipping")

			continue
		}

		cell := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}

			return strings.TrimSpace(row[i])
		}

		rec := models.PortRecord{
			Node:             cell(ColNode),
			Interface:        cell(ColInterface),
			InterfaceProfile: cell(ColInterfaceProfile),
			Selector:         cell(ColSelector),
			PolicyGroup:      cell(ColPolicyGroup),
			SwitchProfile:    cell(ColSwitchProfile),
		}

		if statusCol < len(row) {
			rec.Status = strings.TrimSpace(row[statusCol])
		}

		if _, ok := cols[ColDeployedEPGs]; ok {
			rec.DeployedEPGs = SplitEPGs(cell(ColDeployedEPGs))
		}

		if rec.Node == "" || rec.Interface == "" {
			log.Warn().Int("line", line).Msg("Row has no node or interface, skipping")
			continue
		}

		records = append(records, rec)
	}

	return records, nil
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))

	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	return cols
}
