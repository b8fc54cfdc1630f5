package checker

import (
	"bufio"
	"bytes"
	"net"
	"net/http"
	"net/textproto"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// HeaderField is one response header as received.
type HeaderField struct {
	Name  string
	Value string
}

// OrderedHeaders keeps response headers in wire order. A repeated name is
// merged into its first occurrence with ", ", keeping the first-seen casing.
type OrderedHeaders struct {
	fields []HeaderField
	index  map[string]int
}

// Add appends a header or merges it into an earlier one with the same name.
func (h *OrderedHeaders) Add(name, value string) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	key := strings.ToLower(name)
	if i, ok := h.index[key]; ok {
		h.fields[i].Value += ", " + value
		return
	}
	h.index[key] = len(h.fields)
	h.fields = append(h.fields, HeaderField{Name: name, Value: value})
}

// Get returns the merged value of name, matched case-insensitively.
func (h *OrderedHeaders) Get(name string) (string, bool) {
	if h == nil || h.index == nil {
		return "", false
	}
	i, ok := h.index[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return h.fields[i].Value, true
}

// Fields returns a copy of the headers in order.
func (h *OrderedHeaders) Fields() []HeaderField {
	if h == nil {
		return nil
	}
	out := make([]HeaderField, len(h.fields))
	copy(out, h.fields)
	return out
}

func (h *OrderedHeaders) Len() int {
	if h == nil {
		return 0
	}
	return len(h.fields)
}

// String renders one "name:value" line per header.
func (h *OrderedHeaders) String() string {
	if h == nil {
		return ""
	}
	lines := make([]string, 0, len(h.fields))
	for _, f := range h.fields {
		lines = append(lines, f.Name+":"+f.Value)
	}
	return strings.Join(lines, "\n")
}

// headersFromMap is used when the wire bytes are unavailable. Order is lost,
// so names are sorted for stable output.
func headersFromMap(header http.Header) *OrderedHeaders {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &OrderedHeaders{}
	for _, name := range names {
		out.Add(name, strings.Join(header[name], ", "))
	}
	return out
}

// parseResponseHead extracts the headers of the response head with the given
// status code from raw connection bytes. Interim 1xx heads are skipped.
func parseResponseHead(raw []byte, statusCode int) (*OrderedHeaders, bool) {
	r := textproto.NewReader(bufio.NewReader(bytes.NewReader(raw)))
	for {
		statusLine, err := r.ReadLine()
		if err != nil {
			return nil, false
		}
		if statusLine == "" {
			continue
		}
		code, ok := statusCodeOf(statusLine)
		if !ok {
			return nil, false
		}

		headers := &OrderedHeaders{}
		complete := false
		for {
			line, err := r.ReadLine()
			if err != nil {
				break
			}
			if line == "" {
				complete = true
				break
			}
			name, value, found := strings.Cut(line, ":")
			if !found {
				continue
			}
			headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))
		}
		if code == statusCode {
			return headers, complete
		}
		if !complete {
			return nil, false
		}
	}
}

func statusCodeOf(statusLine string) (int, bool) {
	if !strings.HasPrefix(statusLine, "HTTP/") {
		return 0, false
	}
	fields := strings.Fields(statusLine)
	if len(fields) < 2 {
		return 0, false
	}
	code, err := strconv.Atoi(fields[1])
	return code, err == nil
}

const recordLimit = 64 << 10

// recordingConn keeps a copy of the first bytes read from a connection so the
// response head can be parsed in wire order.
type recordingConn struct {
	net.Conn
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *recordingConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 {
		c.mu.Lock()
		if room := recordLimit - c.buf.Len(); room > 0 {
			if room > n {
				room = n
			}
			c.buf.Write(p[:room])
		}
		c.mu.Unlock()
	}
	return n, err
}

func (c *recordingConn) recorded() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(c.buf.Bytes())
}
