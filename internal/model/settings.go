package model

// Settings keys as stored in the settings table.
const (
	SettingToken           = "token"
	SettingRepoOwner       = "repoOwner"
	SettingRepoName        = "repoName"
	SettingDefaultLanguage = "defaultLanguage"
)

// Settings holds the GitHub target and the fallback language.
type Settings struct {
	Token           string `json:"token"`
	RepoOwner       string `json:"repoOwner"`
	RepoName        string `json:"repoName"`
	DefaultLanguage string `json:"defaultLanguage"`
}

// Missing returns the keys of required settings that are empty.
func (s Settings) Missing() []string {
	var missing []string
	if s.Token == "" {
		missing = append(missing, SettingToken)
	}
	if s.RepoOwner == "" {
		missing = append(missing, SettingRepoOwner)
	}
	if s.RepoName == "" {
		missing = append(missing, SettingRepoName)
	}
	return missing
}

// Redacted returns a copy safe to log or return over the API.
func (s Settings) Redacted() Settings {
	if s.Token != "" {
		s.Token = "***"
	}
	return s
}

// Merge fills empty fields of s from fallback.
func (s Settings) Merge(fallback Settings) Settings {
	if s.Token == "" {
		s.Token = fallback.Token
	}
	if s.RepoOwner == "" {
		s.RepoOwner = fallback.RepoOwner
	}
	if s.RepoName == "" {
		s.RepoName = fallback.RepoName
	}
	if s.DefaultLanguage == "" {
		s.DefaultLanguage = fallback.DefaultLanguage
	}
	return s
}
