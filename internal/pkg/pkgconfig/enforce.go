package pkgconfig

// Keys owned by the logging-precedence enforcer. Downstream code reads these,
// never the quickpay.logging.* inputs they are derived from.
const (
	KeySchemaFormat       = "logging.schema.format"
	KeyServiceName        = "logging.service.name"
	KeyServiceVersion     = "logging.service.version"
	KeyServiceEnvironment = "logging.service.environment"
	KeyMaskingEnabled     = "logging.masking.enabled"
)

// SchemaFormatQuickpayJSON is the only wire format this build emits.
const SchemaFormatQuickpayJSON = "quickpay-json"

// LockedSettings are the effective values after enforcement.
type LockedSettings struct {
	SchemaFormat       string
	ServiceName        string
	ServiceVersion     string
	ServiceEnvironment string
	MaskingEnabled     bool
}

// EnforceLoggingDefaults pins the schema format, service identity, and
// masking toggle into the explicit-set layer of the configuration, which
// outranks the config file, environment, and any later file reload. The
// inputs are read once from quickpay.logging.*; after this call the locked
// keys are read-only for the life of the process.
func (vc *Viper) EnforceLoggingDefaults() LockedSettings {
	settings := LockedSettings{
		SchemaFormat:       SchemaFormatQuickpayJSON,
		ServiceName:        vc.GetString("quickpay.logging.service.name"),
		ServiceVersion:     vc.GetString("quickpay.logging.service.version"),
		ServiceEnvironment: vc.GetString("quickpay.logging.service.environment"),
		MaskingEnabled:     true,
	}

	if settings.ServiceName == "" {
		settings.ServiceName = "quickpay-service"
	}
	if settings.ServiceVersion == "" {
		settings.ServiceVersion = "unknown"
	}
	if settings.ServiceEnvironment == "" {
		settings.ServiceEnvironment = "development"
	}
	if vc.v.IsSet("quickpay.logging.pii-masking") {
		settings.MaskingEnabled = vc.v.GetBool("quickpay.logging.pii-masking")
	}

	vc.v.Set(KeySchemaFormat, settings.SchemaFormat)
	vc.v.Set(KeyServiceName, settings.ServiceName)
	vc.v.Set(KeyServiceVersion, settings.ServiceVersion)
	vc.v.Set(KeyServiceEnvironment, settings.ServiceEnvironment)
	vc.v.Set(KeyMaskingEnabled, settings.MaskingEnabled)

	return settings
}
