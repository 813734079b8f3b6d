package main

import (
	"context"
	"os"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/store"
	sfpkg "github.com/scopecraft/presales-cli/pkg/salesforce"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "presales.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (PRESALES_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}

// loadPack resolves the policy pack every engine command runs under:
// an explicit file path wins, then the latest stored pack named
// "default", then the built-in pack. st may be nil to skip the store.
func loadPack(ctx context.Context, st store.Store) (*model.PolicyPack, error) {
	if cfg.Policy.Pack != "" {
		pack, err := model.LoadPolicyPack(cfg.Policy.Pack)
		if err != nil {
			return nil, eris.Wrapf(err, "load policy pack %s", cfg.Policy.Pack)
		}
		return pack, nil
	}

	if st != nil {
		body, version, err := st.GetPolicyPack(ctx, "default", 0)
		if err == nil {
			pack, perr := model.ParsePolicyPack(body)
			if perr != nil {
				return nil, eris.Wrapf(perr, "parse stored policy pack version %d", version)
			}
			zap.L().Info("using stored policy pack",
				zap.String("name", "default"),
				zap.Int("version", version))
			return pack, nil
		}
		if !eris.Is(err, store.ErrNotFound) {
			return nil, eris.Wrap(err, "load stored policy pack")
		}
	}

	return model.DefaultPolicyPack(), nil
}
