package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/testutil"
	"github.com/runoshun/taskhub/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowConfig_Execute(t *testing.T) {
	t.Run("returns both config infos and effective config", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		manager.Local = domain.ConfigInfo{
			Path:    "/work/.taskhub/config.toml",
			Content: "[actor]\ndefault = \"1\"",
			Exists:  true,
		}
		manager.Global = domain.ConfigInfo{
			Path:    "/home/test/.config/taskhub/config.toml",
			Content: "[log]\nlevel = \"debug\"",
			Exists:  true,
		}
		loader := testutil.NewMockConfigLoader()
		loader.Config.Actor.Default = "1"

		out, err := usecase.NewShowConfig(manager, loader).Execute(context.Background(), usecase.ShowConfigInput{})

		require.NoError(t, err)
		assert.Equal(t, manager.Local, out.LocalConfig)
		assert.Equal(t, manager.Global, out.GlobalConfig)
		assert.Equal(t, "1", out.EffectiveConfig.Actor.Default)
	})

	t.Run("propagates load errors", func(t *testing.T) {
		loader := testutil.NewMockConfigLoader()
		loader.LoadErr = errors.New("parse failed")

		_, err := usecase.NewShowConfig(testutil.NewMockConfigManager(), loader).
			Execute(context.Background(), usecase.ShowConfigInput{})

		assert.EqualError(t, err, "parse failed")
	})
}

func TestInitConfig_Execute(t *testing.T) {
	t.Run("writes defaults when no config given", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		manager.Local.Path = "/work/.taskhub/config.toml"

		out, err := usecase.NewInitConfig(manager).Execute(context.Background(), usecase.InitConfigInput{})

		require.NoError(t, err)
		assert.Equal(t, "/work/.taskhub/config.toml", out.Path)
		require.NotNil(t, manager.Written)
		assert.Equal(t, domain.NewDefaultConfig(), manager.Written)
	})

	t.Run("existing file", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		manager.Local.Exists = true

		_, err := usecase.NewInitConfig(manager).Execute(context.Background(), usecase.InitConfigInput{})

		assert.ErrorIs(t, err, domain.ErrConfigExists)
		assert.Nil(t, manager.Written)
	})
}
