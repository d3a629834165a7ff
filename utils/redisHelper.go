package utils

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"github.com/bsm/redislock"
)

var mutex sync.Mutex

func GetTypeName[T any]() string {
	var model T
	return reflect.TypeOf(model).Name()
}

// next document sequence number for the model type, per user.
// Redis keeps a counter warm; the first call (or a cold cache) syncs it from
// the db's max(sequence_no). ValidateUnique guards against a stale counter.
func GetSequence[T any](ctx context.Context, userId int) (int64, error) {
	var model T
	mutex.Lock()
	defer mutex.Unlock()
	cacheKey := fmt.Sprintf("%d-%s_seq", userId, strings.ToLower(GetTypeName[T]()))
	var seqNo int64
	var err error
	db := config.GetDB()

	for {
		seqNo, err = config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		// if not found in redis (or redis is down), get from db
		if seqNo <= 1 {
			var dbSeq *int64
			if err := db.WithContext(ctx).Model(&model).Select("max(sequence_no)").
				Where("user_id = ?", userId).
				Scan(&dbSeq).Error; err != nil {
				return 0, err
			}
			// in case db has no records yet
			if dbSeq == nil {
				seqNo = 0
			} else {
				seqNo = *dbSeq
			}
			seqNo++
			if err := config.SetRedisObject(cacheKey, &seqNo, 0); err != nil {
				return 0, err
			}
		}
		// check if sequence number exists in db
		err = ValidateUnique[T](ctx, userId, "sequence_no", seqNo, 0)
		if err == nil {
			break
		}
		seqNo++
	}
	return seqNo, nil
}

// UserLock obtains a short redis lock scoped to one user, serializing actions
// that must not interleave across browser tabs (payroll runs, bookings).
// Callers must invoke the returned release func.
func UserLock(ctx context.Context, userId int, lockType string, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		// No redis: single-instance deployments fall back to db transaction isolation.
		return func() {}, nil
	}
	lockKey := fmt.Sprintf("%s:%d", lockType, userId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock for user", userId, err)
		return nil, errors.New("another operation is in progress, try again")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock for user", userId, err)
		return nil, err
	}

	return func() {
		_ = lock.Release(ctx)
	}, nil
}
