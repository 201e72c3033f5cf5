package database

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed queries.sql
var defaultQueries string

// QueryBook holds named SQL statements. A query file is a sequence of
// sections, each introduced by a "-- @name" line; other lines starting
// with "--" are comments. Statement lines are joined with single spaces.
type QueryBook struct {
	queries map[string]string
}

// DefaultQueries returns the query book compiled into the binary.
func DefaultQueries() *QueryBook {
	book, err := ParseQueries(strings.NewReader(defaultQueries))
	if err != nil {
		panic(fmt.Sprintf("embedded queries.sql: %v", err))
	}
	return book
}

// LoadQueries reads a query book from a file on disk.
func LoadQueries(path string) (*QueryBook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open queries file: %w", err)
	}
	defer f.Close()
	return ParseQueries(f)
}

// ParseQueries parses a query book. Duplicate names are rejected.
func ParseQueries(r io.Reader) (*QueryBook, error) {
	book := &QueryBook{queries: make(map[string]string)}

	var (
		name string
		sql  []string
	)
	flush := func() error {
		if name == "" {
			return nil
		}
		if _, dup := book.queries[name]; dup {
			return fmt.Errorf("duplicate query %q", name)
		}
		book.queries[name] = strings.Join(sql, " ")
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		switch {
		case strings.HasPrefix(line, "-- @"):
			if err := flush(); err != nil {
				return nil, err
			}
			name = strings.TrimSpace(line[len("-- @"):])
			sql = sql[:0]
		case name == "":
		case strings.HasPrefix(strings.TrimSpace(line), "--"):
		case strings.TrimSpace(line) == "":
		default:
			sql = append(sql, strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return book, nil
}

// Get returns the SQL for name.
func (b *QueryBook) Get(name string) (string, bool) {
	q, ok := b.queries[name]
	return q, ok
}

// Len returns the number of loaded queries.
func (b *QueryBook) Len() int { return len(b.queries) }
