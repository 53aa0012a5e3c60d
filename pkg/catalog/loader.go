package catalog

import (
	"bufio"
	"fmt"
	"io"
	"storemy/pkg/primitives"
	"storemy/pkg/storage/heap"
	"storemy/pkg/tuple"
	"storemy/pkg/types"
	"strings"
)

// LoadFromReader ingests a catalog description in the line-oriented format:
//
//	# comment lines start with '#' and blank lines are skipped
//	path tableName (colName colType, colName colType pk, ...)
//
// colType is "int" or "string"; a column whose type is followed by the
// marker "pk" names the table's primary key. Each referenced file is opened
// (created if missing) as a HeapFile and registered under tableName.
func (c *Catalog) LoadFromReader(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := c.loadLine(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

func (c *Catalog) loadLine(line string) error {
	open := strings.IndexByte(line, '(')
	closeIdx := strings.LastIndexByte(line, ')')
	if open < 0 || closeIdx < open {
		return fmt.Errorf("expected \"path tableName (columns...)\", got %q", line)
	}

	head := strings.Fields(line[:open])
	if len(head) != 2 {
		return fmt.Errorf("expected \"path tableName\" before '(', got %q", line[:open])
	}
	path, tableName := head[0], head[1]

	colTypes, colNames, pk, err := parseColumns(line[open+1 : closeIdx])
	if err != nil {
		return err
	}

	td, err := tuple.NewTupleDesc(colTypes, colNames)
	if err != nil {
		return err
	}

	file, err := heap.NewHeapFile(primitives.Filepath(path), td)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	return c.AddTable(tableName, file, pk)
}

func parseColumns(body string) ([]types.Type, []string, string, error) {
	specs := strings.Split(body, ",")
	colTypes := make([]types.Type, 0, len(specs))
	colNames := make([]string, 0, len(specs))
	pk := ""

	for _, spec := range specs {
		fields := strings.Fields(spec)
		if len(fields) < 2 {
			return nil, nil, "", fmt.Errorf("malformed column spec %q", spec)
		}
		name, typeName := fields[0], strings.ToLower(fields[1])

		var t types.Type
		switch typeName {
		case "int":
			t = types.IntType
		case "string":
			t = types.StringType
		default:
			return nil, nil, "", fmt.Errorf("unknown column type %q for %s", fields[1], name)
		}

		for _, marker := range fields[2:] {
			if strings.ToLower(marker) == "pk" {
				pk = name
			}
		}

		colNames = append(colNames, name)
		colTypes = append(colTypes, t)
	}

	return colTypes, colNames, pk, nil
}
