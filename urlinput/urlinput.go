// Package urlinput turns operator input into a list of urls to fetch.
package urlinput

import (
	"bufio"
	"io"
	"strings"

	"mvdan.cc/xurls/v2"
)

// SplitList splits a comma-separated line of urls. Surrounding whitespace is
// stripped and empty entries are dropped.
func SplitList(line string) []string {
	var urls []string
	for _, f := range strings.Split(line, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			urls = append(urls, f)
		}
	}
	return urls
}

// ReadList reads a single line from r and splits it with SplitList. A
// missing trailing newline is fine.
func ReadList(r io.Reader) ([]string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	return SplitList(line), nil
}

// Extract returns every http(s) url found in free text read from r, in order
// of first appearance. Repeats are dropped.
func Extract(r io.Reader) ([]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	rx := xurls.Strict()

	seen := map[string]struct{}{}
	var urls []string
	for _, u := range rx.FindAllString(string(b), -1) {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	return urls, nil
}
