package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	envPrefix         = "STOREFRONT"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type storage struct {
	Driver string `mapstructure:"driver"`
	SQLDB  string `mapstructure:"sql_db"`
}

type auth struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type admin struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type checkout struct {
	FreeShippingThreshold float64 `mapstructure:"free_shipping_threshold"`
	ShippingFee           float64 `mapstructure:"shipping_fee"`
	TaxRate               float64 `mapstructure:"tax_rate"`
}

type topics struct {
	Products string `mapstructure:"products"`
	Orders   string `mapstructure:"orders"`
}

type brokerTLS struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	Topics             topics    `mapstructure:"topics"`
	TLS                brokerTLS `mapstructure:"tls"`
}

// Enabled reports whether events are published to Kafka.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	SeedFile       string     `mapstructure:"seed_file"`
	Storage        storage    `mapstructure:"storage"`
	Auth           auth       `mapstructure:"auth"`
	Admin          admin      `mapstructure:"admin"`
	Checkout       checkout   `mapstructure:"checkout"`
	Broker         broker     `mapstructure:"broker"`
}

// Load reads the config file named by --config or STOREFRONT_CONFIG_FILE.
// Every key can be overridden from the environment, for example
// STOREFRONT_AUTH_JWT_SECRET for auth.jwt_secret.
func Load() Config {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(getConfigFilepath())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer())
	v.AutomaticEnv()

	cfg, err := load(v)
	if err != nil {
		die(err)
	}
	return cfg
}

func envKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

func load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "INFO")
	v.SetDefault("http_server_addr", ":8000")
	v.SetDefault("seed_file", "")
	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("storage.sql_db", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("checkout.free_shipping_threshold", 999)
	v.SetDefault("checkout.shipping_fee", 49)
	v.SetDefault("checkout.tax_rate", 0.10)
	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.topics.products", "storefront.products")
	v.SetDefault("broker.topics.orders", "storefront.orders")
	v.SetDefault("broker.tls.ca", "")
	v.SetDefault("broker.tls.cert", "")
	v.SetDefault("broker.tls.key", "")
}

func (c Config) validate() error {
	var errs []string
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.SQLDB == "" {
			errs = append(errs, "storage.sql_db is required for the postgres driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.driver %q is not supported", c.Storage.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, "auth.jwt_secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, "auth.token_ttl must be positive")
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		errs = append(errs, "admin.email and admin.password are set together")
	}
	if c.Broker.Enabled() && len(c.Broker.SchemaRegistryURLs) == 0 {
		errs = append(errs, "broker.schema_registry_urls is required with broker.seed_brokers")
	}
	if len(errs) != 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", "./config/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	SeedFile=%q

	Storage:
	Driver=%q
	SQLDB=%q

	Auth:
	TokenTTL=%s
	Admin=%q

	Checkout:
	FreeShippingThreshold=%v
	ShippingFee=%v
	TaxRate=%v

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		Products=%q
		Orders=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.SeedFile,
		c.Storage.Driver,
		redactDSN(c.Storage.SQLDB),
		c.Auth.TokenTTL,
		c.Admin.Email,
		c.Checkout.FreeShippingThreshold,
		c.Checkout.ShippingFee,
		c.Checkout.TaxRate,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.CA != "",
		c.Broker.Topics.Products,
		c.Broker.Topics.Orders,
	)
}

// redactDSN hides the password of a postgres URL.
func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPass := strings.Cut(userinfo, ":")
	if !hasPass {
		return dsn
	}
	return scheme + "://" + user + ":***@" + host
}
