package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModule struct {
	name     string
	priority int
	err      error
	order    *[]string
}

func (m *stubModule) Name() string  { return m.name }
func (m *stubModule) Priority() int { return m.priority }
func (m *stubModule) Init(ctx *ModuleContext) error {
	*m.order = append(*m.order, m.name)
	return m.err
}

func withRegistry(t *testing.T, modules ...Module) {
	t.Helper()
	prev := moduleRegistry
	moduleRegistry = make(map[string]Module)
	for _, m := range modules {
		Register(m)
	}
	t.Cleanup(func() { moduleRegistry = prev })
}

func TestInitModulesByPriority(t *testing.T) {
	var order []string
	withRegistry(t,
		&stubModule{name: "game", priority: 30, order: &order},
		&stubModule{name: "shop", priority: 10, order: &order},
		&stubModule{name: "common", priority: 0, order: &order},
		&stubModule{name: "parking", priority: 10, order: &order},
	)

	require.NoError(t, InitModules(&ModuleContext{}))
	assert.Equal(t, []string{"common", "parking", "shop", "game"}, order)
}

func TestInitModulesStopsOnError(t *testing.T) {
	var order []string
	withRegistry(t,
		&stubModule{name: "a", priority: 1, err: errors.New("boom"), order: &order},
		&stubModule{name: "b", priority: 2, order: &order},
	)

	err := InitModules(&ModuleContext{})
	assert.ErrorContains(t, err, "init module a")
	assert.Equal(t, []string{"a"}, order)
}

func TestShutdownRunsInReverse(t *testing.T) {
	var order []int
	ctx := &ModuleContext{}
	ctx.OnShutdown(func() { order = append(order, 1) })
	ctx.OnShutdown(func() { order = append(order, 2) })

	ctx.Shutdown()
	assert.Equal(t, []int{2, 1}, order)
}
