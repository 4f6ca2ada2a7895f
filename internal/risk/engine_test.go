package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"main/internal/model"
	"main/internal/model/enum"
)

func TestEvaluateBuyFloor(t *testing.T) {
	e := NewEngine(Config{Budget: 6000, Floor: -4000})

	ok := e.EvaluateBuy(model.NewOrder(1, enum.SideBuy, 100, 2), StateView{Money: 6000})
	assert.True(t, ok.Allowed())

	denied := e.EvaluateBuy(model.NewOrder(2, enum.SideBuy, 100, 2), StateView{Money: -3900})
	assert.False(t, denied.Allowed())
	assert.Equal(t, ReasonBudgetFloor, denied.Reason)
}

func TestEvaluateSolvency(t *testing.T) {
	e := NewEngine(Config{Budget: 10000})
	assert.True(t, e.EvaluateSolvency(0.5).Allowed())
	assert.Equal(t, ReasonInsolvent, e.EvaluateSolvency(-0.01).Reason)
}
