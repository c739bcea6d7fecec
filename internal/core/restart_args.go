package core

// Repair options understood by the engine. A restart replaces any of them
// already on the command line with the one requested.
const (
	OptSalvageWallet = "--salvagewallet"
	OptRescan        = "--rescan"
	OptZapTxes1      = "--zapwallettxes=1"
	OptZapTxes2      = "--zapwallettxes=2"
	OptUpgradeWallet = "--upgradewallet"
	OptReindex       = "--reindex"
	OptResync        = "--resync"
)

var repairOptions = []string{
	OptSalvageWallet,
	OptRescan,
	OptZapTxes1,
	OptZapTxes2,
	OptUpgradeWallet,
	OptReindex,
	OptResync,
}

// IsRepairOption reports whether opt is one of the repair options.
func IsRepairOption(opt string) bool {
	for _, o := range repairOptions {
		if o == opt {
			return true
		}
	}
	return false
}

// RestartArgs builds the argument list for a restarted shell from the
// current process arguments: the program name is dropped, earlier repair
// options are removed and option is appended.
func RestartArgs(args []string, option string) []string {
	if len(args) > 0 {
		args = args[1:]
	}
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if IsRepairOption(a) {
			continue
		}
		out = append(out, a)
	}
	if option != "" {
		out = append(out, option)
	}
	return out
}
