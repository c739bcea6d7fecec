package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestartArgs(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		option string
		want   []string
	}{
		{
			name:   "program name only",
			args:   []string{"walletshell"},
			option: OptResync,
			want:   []string{"--resync"},
		},
		{
			name:   "keeps ordinary flags",
			args:   []string{"walletshell", "--datadir", "/tmp/nbx", "--min"},
			option: OptRescan,
			want:   []string{"--datadir", "/tmp/nbx", "--min", "--rescan"},
		},
		{
			name:   "replaces earlier repair options",
			args:   []string{"walletshell", "--reindex", "--datadir", "/tmp/nbx", "--zapwallettxes=1"},
			option: OptZapTxes2,
			want:   []string{"--datadir", "/tmp/nbx", "--zapwallettxes=2"},
		},
		{
			name:   "no option",
			args:   []string{"walletshell", "--salvagewallet"},
			option: "",
			want:   []string{},
		},
		{
			name:   "empty args",
			args:   nil,
			option: OptUpgradeWallet,
			want:   []string{"--upgradewallet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RestartArgs(tt.args, tt.option))
		})
	}
}

func TestRestartArgs_DoesNotMutateInput(t *testing.T) {
	args := []string{"walletshell", "--rescan", "--datadir", "x"}
	RestartArgs(args, OptReindex)
	assert.Equal(t, []string{"walletshell", "--rescan", "--datadir", "x"}, args)
}

func TestIsRepairOption(t *testing.T) {
	for _, opt := range repairOptions {
		assert.True(t, IsRepairOption(opt), opt)
	}
	assert.False(t, IsRepairOption("--zapwallettxes"))
	assert.False(t, IsRepairOption("--datadir"))
}
