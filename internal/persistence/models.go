package persistence

// Persisted keys. The names match what earlier releases of the mobile client
// wrote, so an existing installation keeps its session after an upgrade.
const (
	KeyDomain              = "@appoint_domain"
	KeyToken               = "@appoint_token"
	KeyOnboardingCompleted = "@appoint_onboarding_completed"
	KeyStaffData           = "@appoint_staff_data"
	KeyLicenseData         = "@appoint_license_data"
	KeyThemeMode           = "@appoint_theme_mode"
	KeyLanguage            = "@appoint_language"
	KeyInstallationID      = "@appoint_installation_id"
)

// SessionKeys lists the keys removed on logout. Theme mode, language and the
// installation id are device preferences and survive a logout.
func SessionKeys() []string {
	return []string{
		KeyDomain,
		KeyToken,
		KeyOnboardingCompleted,
		KeyStaffData,
		KeyLicenseData,
	}
}
