//go:build wireinject
// +build wireinject

package boot

import (
	"github.com/google/wire"
)

// InitApp 按 ProviderSet 装配；实现由 wire 生成到 wire_gen.go
func InitApp(configPath string) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
