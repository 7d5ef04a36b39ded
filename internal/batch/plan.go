// Package batch splits a row count into offset/limit windows.
package batch

// Window is one page of the tabular store.
type Window struct {
	Index  int
	Offset int
	Limit  int
}

// Plan splits total rows into consecutive windows of size rows. Offsets
// advance strictly by size; only the last window may be shorter.
// A size below 1 is treated as 1.
func Plan(total, size int) []Window {
	if total <= 0 {
		return nil
	}
	if size <= 0 {
		size = 1
	}
	windows := make([]Window, 0, (total+size-1)/size)
	for offset, idx := 0, 0; offset < total; offset, idx = offset+size, idx+1 {
		end := offset + size
		if end > total {
			end = total
		}
		windows = append(windows, Window{Index: idx, Offset: offset, Limit: end - offset})
	}
	return windows
}
