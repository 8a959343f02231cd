package ixerrors

// Exit codes returned by cmd/lcindex, per the CLI contract: 0 ok, 1 generic
// error, 2 configuration invalid, 3 corruption detected and rebuild failed,
// 4 unsupported language, 5 model verification failed.
const (
	ExitOK                   = 0
	ExitGeneric              = 1
	ExitConfigInvalid        = 2
	ExitCorruptionUnrecoverable = 3
	ExitUnsupportedLanguage  = 4
	ExitModelVerificationFailed = 5
)

// ExitCode maps an error to the process exit code cmd/lcindex should
// return. nil maps to ExitOK. Errors that aren't *IxError (e.g. cobra's own
// usage errors) map to ExitGeneric.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	code := GetCode(err)
	switch code {
	case ErrCodeConfigNotFound, ErrCodeConfigInvalid, ErrCodeConfigPermission:
		return ExitConfigInvalid
	case ErrCodeCorruptIndex, ErrCodeFileCorrupt, ErrCodeRebuildFailed:
		return ExitCorruptionUnrecoverable
	case ErrCodeUnsupportedLanguage:
		return ExitUnsupportedLanguage
	case ErrCodeModelVerificationFailed, ErrCodeModelDownload:
		return ExitModelVerificationFailed
	default:
		return ExitGeneric
	}
}
