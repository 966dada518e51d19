package domain

import "math/rand/v2"

//go:generate go tool mockgen -destination=./mocks/random_mock.go -package=mocks . Random

// Random は探索目標の選択だけに使う乱数源です。テストで差し替えられるよう一箇所に閉じ込めます。
type Random interface {
	// Float64 は [0, 1) の乱数を返します。
	Float64() float64
}

// NewRandom は seed で初期化した決定的な乱数源を返します。
func NewRandom(seed uint64) Random {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
