package utils

// SplitFrames 将负载按 size 字节切分为多个帧；size <= 0 时整体作为一帧。
func SplitFrames(payload []byte, size int) [][]byte {
	if size <= 0 || len(payload) <= size {
		return [][]byte{payload}
	}

	frames := make([][]byte, 0, (len(payload)+size-1)/size)
	for start := 0; start < len(payload); start += size {
		end := start + size
		if end > len(payload) {
			end = len(payload)
		}
		frames = append(frames, payload[start:end])
	}
	return frames
}
