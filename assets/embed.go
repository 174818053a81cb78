// Package assets embeds the seed word lists and SQL migrations.
package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed words/*.txt
var wordsFS embed.FS

//go:embed sql/*.sql
var sqlFS embed.FS

// Migrations exposes the SQL migration files under "sql/".
func Migrations() fs.FS { return sqlFS }

func readLines(fsys fs.FS, name string) ([]string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// WordLists returns every line of every embedded words/*.txt file,
// lowercased, in file-name order.
func WordLists() ([]string, error) {
	names, err := fs.Glob(wordsFS, "words/*.txt")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	var out []string
	for _, n := range names {
		lines, err := readLines(wordsFS, n)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}
