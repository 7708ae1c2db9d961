package rbac

// Ledger permissions carried in the actor token's "perms" claim.
const (
	PermAccountView   = "ledger.account.view"
	PermAccountManage = "ledger.account.manage"
	PermJournalView   = "ledger.journal.view"
	PermJournalPost   = "ledger.journal.post"
	PermPeriodView    = "ledger.period.view"
	PermPeriodManage  = "ledger.period.manage"
	PermPeriodClose   = "ledger.period.close"
	PermPeriodReopen  = "ledger.period.reopen"
	PermReportView    = "ledger.report.view"
)

// AllPermissions lists every ledger permission, used by seeding and token tooling.
var AllPermissions = []string{
	PermAccountView,
	PermAccountManage,
	PermJournalView,
	PermJournalPost,
	PermPeriodView,
	PermPeriodManage,
	PermPeriodClose,
	PermPeriodReopen,
	PermReportView,
}
