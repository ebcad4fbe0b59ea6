package gateway

type backlogEntry struct {
	seq  int64
	data []byte
}

// backlog is a fixed-size ring of the most recent frames of one profile.
// The hub's mutex guards it.
type backlog struct {
	entries []backlogEntry
	next    int
	n       int
}

func newBacklog(size int) *backlog {
	if size < 1 {
		size = 1
	}
	return &backlog{entries: make([]backlogEntry, size)}
}

func (b *backlog) push(seq int64, data []byte) {
	b.entries[b.next] = backlogEntry{seq: seq, data: data}
	b.next = (b.next + 1) % len(b.entries)
	if b.n < len(b.entries) {
		b.n++
	}
}

// at returns the i-th oldest entry.
func (b *backlog) at(i int) backlogEntry {
	start := (b.next - b.n + len(b.entries)) % len(b.entries)
	return b.entries[(start+i)%len(b.entries)]
}

func (b *backlog) latest() ([]byte, bool) {
	if b.n == 0 {
		return nil, false
	}
	return b.at(b.n - 1).data, true
}

// since returns the frames with a sequence number above seq, oldest first.
func (b *backlog) since(seq int64) [][]byte {
	var out [][]byte
	for i := 0; i < b.n; i++ {
		if e := b.at(i); e.seq > seq {
			out = append(out, e.data)
		}
	}
	return out
}
