package cmd

import (
	"bytes"
	"testing"

	"github.com/mautops/request-gin/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCommand_Subcommands 测试子命令注册
func TestRootCommand_Subcommands(t *testing.T) {
	root := GetRootCmd()
	assert.Equal(t, "request-gin", root.Use)

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"server", "migrate", "seed", "authz-model"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

// TestApplyServerFlags 测试命令行参数覆盖监听地址
func TestApplyServerFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 9000

	require.NoError(t, serverCmd.Flags().Set("port", "9100"))
	t.Cleanup(func() {
		_ = serverCmd.Flags().Set("port", "8080")
		serverCmd.Flags().Lookup("port").Changed = false
	})

	applyServerFlags(serverCmd, cfg)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

// TestSeedCommand_RequiresFile 测试 seed 命令参数校验
func TestSeedCommand_RequiresFile(t *testing.T) {
	assert.Error(t, seedCmd.Args(seedCmd, []string{}))
	assert.NoError(t, seedCmd.Args(seedCmd, []string{"directory.yaml"}))
}

// TestAuthzModelCommand 测试输出 OpenFGA 授权模型
func TestAuthzModelCommand(t *testing.T) {
	var out bytes.Buffer
	authzModelCmd.SetOut(&out)
	t.Cleanup(func() { authzModelCmd.SetOut(nil) })

	require.NoError(t, authzModelCmd.RunE(authzModelCmd, nil))
	assert.Contains(t, out.String(), "type request")
	assert.Contains(t, out.String(), "define viewer: [user] or creator")
}
