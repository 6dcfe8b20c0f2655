package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/vivero-api/pkg/config"
)

// publicResolver DNS usado cuando el resolver del contenedor solo devuelve AAAA.
const publicResolver = "8.8.8.8:53"

// NewPool crea el pool PostgreSQL, registra el codec NUMERIC -> decimal.Decimal en cada
// conexión y verifica conectividad con un ping.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	dsn := cfg.ConnectionString()
	if cfg.ForceIPv4 {
		dsn = withIPv4Host(ctx, dsn)
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if cfg.ForceIPv4 {
		poolConfig.ConnConfig.DialFunc = dialIPv4
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapStoreErr("crear pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapStoreErr("ping DB", err)
	}
	return pool, nil
}

// dialIPv4 fuerza tcp4 (Docker suele no tener IPv6 y algunos proveedores publican solo AAAA).
func dialIPv4(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := lookupIPv4(ctx, host)
	if err != nil {
		return d.DialContext(ctx, network, addr)
	}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
}

// lookupIPv4 prueba el resolver del sistema y luego uno público.
func lookupIPv4(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			return host, nil
		}
		return "", fmt.Errorf("%s es IPv6", host)
	}
	resolvers := []*net.Resolver{
		net.DefaultResolver,
		{
			PreferGo: true,
			Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "udp", publicResolver)
			},
		},
	}
	var lastErr error
	for _, r := range resolvers {
		ips, err := r.LookupIP(ctx, "ip4", host)
		if err != nil {
			lastErr = err
			continue
		}
		for _, ip := range ips {
			if v4 := ip.To4(); v4 != nil {
				return v4.String(), nil
			}
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("sin registros A para %s", host)
	}
	return "", lastErr
}

// withIPv4Host reemplaza el host del DSN por su IPv4 si se puede resolver; si no, lo deja igual.
func withIPv4Host(ctx context.Context, dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Hostname() == "" {
		return dsn
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	ip, err := lookupIPv4(ctx, u.Hostname())
	if err != nil {
		return dsn
	}
	u.Host = net.JoinHostPort(ip, port)
	return u.String()
}
