package service

import (
	"math"

	"github.com/mroth/weightedrand/v2"
)

// drawScale 概率精度，千分之一
const drawScale = 1000

// Drawer 中奖抽签
type Drawer interface {
	Draw() bool
}

type weightedDrawer struct {
	chooser *weightedrand.Chooser[bool, int]
}

// NewDrawer 以 winProbability 的概率返回 true
func NewDrawer(winProbability float64) (Drawer, error) {
	win := int(math.Round(winProbability * drawScale))
	if win < 0 {
		win = 0
	}
	if win > drawScale {
		win = drawScale
	}

	chooser, err := weightedrand.NewChooser(
		weightedrand.NewChoice(true, win),
		weightedrand.NewChoice(false, drawScale-win),
	)
	if err != nil {
		return nil, err
	}
	return &weightedDrawer{chooser: chooser}, nil
}

func (d *weightedDrawer) Draw() bool {
	return d.chooser.Pick()
}

// DrawerFunc 便于测试固定结果
type DrawerFunc func() bool

func (f DrawerFunc) Draw() bool {
	return f()
}
