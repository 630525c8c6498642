package tenant

import (
	"assetflow/bizerror"
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fundwit/go-commons/types"
	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const TxTimeout = 10 * time.Second

var TxMaxRetries uint64 = 3

var txBackoffInitialInterval = 20 * time.Millisecond

// Tx runs fn in one transaction against the org's database. Serialization
// failures are retried with exponential backoff up to TxMaxRetries times;
// every other error aborts immediately and rolls back.
func Tx(ctx context.Context, orgId types.ID, fn func(tx *gorm.DB) error) error {
	ds, err := ResolveFunc(orgId)
	if err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, TxTimeout)
	defer cancel()

	attempt := 0
	operation := func() error {
		attempt++
		err := ds.GormDB(txCtx).Transaction(fn)
		if err == nil {
			return nil
		}
		if IsSerializationFailure(err) {
			logrus.Warnf("transaction of org %s raced (attempt %d): %v", orgId.String(), attempt, err)
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = txBackoffInitialInterval
	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, TxMaxRetries), txCtx))
	if err == nil {
		return nil
	}
	if IsSerializationFailure(err) {
		return bizerror.ErrConcurrentModification
	}
	return err
}

// IsSerializationFailure matches the errors the databases raise when two
// transactions conflict on the same rows: mysql deadlock (1213) and lock
// wait timeout (1205), postgres serialization_failure (40001) and
// deadlock_detected (40P01).
func IsSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	if mysqlErr, ok := err.(*mysql.MySQLError); ok {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") || strings.Contains(msg, "try restarting transaction")
}
