package directline

// Reassembler 把任意切分的帧重新拼接为完整的 JSON 文档。
//
// 每个字节只扫描一次：记录嵌套深度、是否处于字符串内以及转义状态，
// 深度回到零即得到一个完整文档，之后才交给 json.Unmarshal 解析一次。
// 缓冲区在任意时刻要么为空，要么只保存一个未完成文档的前缀。
type Reassembler struct {
	buf      []byte
	scanned  int
	docStart int
	depth    int
	started  bool
	inString bool
	escaped  bool

	discarded int
}

// Feed 追加一帧并按顺序返回其中完成的文档。
func (r *Reassembler) Feed(frame string) [][]byte {
	r.buf = append(r.buf, frame...)

	var docs [][]byte
	consumed := 0

	for i := r.scanned; i < len(r.buf); i++ {
		c := r.buf[i]

		if !r.started {
			switch c {
			case '{', '[':
				r.started = true
				r.depth = 1
				r.docStart = i
			case ' ', '\t', '\r', '\n':
				consumed = i + 1
			default:
				// 文档之外的字节无法属于任何活动集合
				r.discarded++
				consumed = i + 1
			}
			continue
		}

		if r.inString {
			switch {
			case r.escaped:
				r.escaped = false
			case c == '\\':
				r.escaped = true
			case c == '"':
				r.inString = false
			}
			continue
		}

		switch c {
		case '"':
			r.inString = true
		case '{', '[':
			r.depth++
		case '}', ']':
			r.depth--
			if r.depth == 0 {
				doc := make([]byte, i+1-r.docStart)
				copy(doc, r.buf[r.docStart:i+1])
				docs = append(docs, doc)
				r.started = false
				consumed = i + 1
			}
		}
	}

	if consumed > 0 {
		n := copy(r.buf, r.buf[consumed:])
		r.buf = r.buf[:n]
		if r.started {
			r.docStart -= consumed
		}
	}
	r.scanned = len(r.buf)

	return docs
}

// Pending reports whether a partial document is buffered.
func (r *Reassembler) Pending() bool {
	return r.started
}

// Buffered returns a copy of the partial document held so far.
func (r *Reassembler) Buffered() string {
	return string(r.buf)
}

// Discarded counts stray bytes seen outside any document.
func (r *Reassembler) Discarded() int {
	return r.discarded
}

// Reset drops any partial document.
func (r *Reassembler) Reset() {
	r.buf = r.buf[:0]
	r.scanned = 0
	r.docStart = 0
	r.depth = 0
	r.started = false
	r.inString = false
	r.escaped = false
}
