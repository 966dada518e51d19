package application

import (
	"iter"
	"slices"
)

// Table は id で引ける密な配列です。削除は末尾要素との入れ替えで行い、tick ごとの再確保を避けます。
// Get が返すポインタは次の Put / Remove までしか有効ではありません。
type Table[V any] struct {
	items []V
	ids   []int
	index map[int]int
}

func NewTable[V any](capacity int) *Table[V] {
	return &Table[V]{
		items: make([]V, 0, capacity),
		ids:   make([]int, 0, capacity),
		index: make(map[int]int, capacity),
	}
}

// Put は id の値を追加、または置き換えます。
func (t *Table[V]) Put(id int, v V) *V {
	if i, ok := t.index[id]; ok {
		t.items[i] = v
		return &t.items[i]
	}
	t.index[id] = len(t.items)
	t.items = append(t.items, v)
	t.ids = append(t.ids, id)
	return &t.items[len(t.items)-1]
}

func (t *Table[V]) Get(id int) (*V, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return &t.items[i], true
}

func (t *Table[V]) Has(id int) bool {
	_, ok := t.index[id]
	return ok
}

// Remove は id を取り除きます。存在しなければ false を返します。
func (t *Table[V]) Remove(id int) bool {
	i, ok := t.index[id]
	if !ok {
		return false
	}
	last := len(t.items) - 1
	if i != last {
		t.items[i] = t.items[last]
		t.ids[i] = t.ids[last]
		t.index[t.ids[i]] = i
	}
	var zero V
	t.items[last] = zero
	t.items = t.items[:last]
	t.ids = t.ids[:last]
	delete(t.index, id)
	return true
}

// RemoveIf は pred が真を返した要素をすべて取り除き、その数を返します。
func (t *Table[V]) RemoveIf(pred func(id int, v *V) bool) int {
	removed := 0
	for i := 0; i < len(t.items); {
		id := t.ids[i]
		if pred(id, &t.items[i]) {
			t.Remove(id)
			removed++
			continue
		}
		i++
	}
	return removed
}

func (t *Table[V]) Len() int { return len(t.items) }

// All は格納順に (id, 値) を列挙します。列挙中に Put / Remove してはいけません。
func (t *Table[V]) All() iter.Seq2[int, *V] {
	return func(yield func(int, *V) bool) {
		for i := range t.items {
			if !yield(t.ids[i], &t.items[i]) {
				return
			}
		}
	}
}

// IDs は昇順に並べた id のコピーを返します。
func (t *Table[V]) IDs() []int {
	ids := slices.Clone(t.ids)
	slices.Sort(ids)
	return ids
}

func (t *Table[V]) Clear() {
	clear(t.items)
	t.items = t.items[:0]
	t.ids = t.ids[:0]
	clear(t.index)
}
