package utils

import (
	"context"
	"testing"

	tokenswap "github.com/iov-one/tokenswap"
	"github.com/iov-one/tokenswap/errors"
	"github.com/iov-one/tokenswap/store"
	"github.com/iov-one/tokenswap/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavepoint(t *testing.T) {
	key, value := []byte("offer"), []byte("open")

	cases := map[string]struct {
		decorator  tokenswap.Decorator
		handlerErr error
		deliver    bool
		wantStored bool
	}{
		"deliver success is written": {
			decorator:  NewSavepoint().OnDeliver(),
			deliver:    true,
			wantStored: true,
		},
		"deliver failure is rolled back": {
			decorator:  NewSavepoint().OnDeliver(),
			handlerErr: errors.ErrAmount,
			deliver:    true,
			wantStored: false,
		},
		"check failure is rolled back": {
			decorator:  NewSavepoint().OnCheck(),
			handlerErr: errors.ErrAmount,
			wantStored: false,
		},
		"check failure is kept when only deliver is isolated": {
			decorator:  NewSavepoint().OnDeliver(),
			handlerErr: errors.ErrAmount,
			wantStored: true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			h := &weavetest.Handler{
				Key:        key,
				Value:      value,
				CheckErr:   tc.handlerErr,
				DeliverErr: tc.handlerErr,
			}
			handler := weavetest.Decorate(h, tc.decorator)
			tx := &weavetest.Tx{}

			var err error
			if tc.deliver {
				_, err = handler.Deliver(context.Background(), db, tx)
			} else {
				_, err = handler.Check(context.Background(), db, tx)
			}
			if tc.handlerErr != nil {
				assert.True(t, errors.ErrAmount.Is(err))
			} else {
				require.NoError(t, err)
			}
			store.AssertGetHas(t, db, key, valueIf(tc.wantStored, value), tc.wantStored)
		})
	}
}

func valueIf(ok bool, v []byte) []byte {
	if ok {
		return v
	}
	return nil
}

func TestRecovery(t *testing.T) {
	h := &weavetest.Handler{Panic: "boom"}
	handler := weavetest.Decorate(h, NewRecovery())
	db := store.MemStore()

	_, err := handler.Check(context.Background(), db, &weavetest.Tx{})
	assert.True(t, errors.ErrPanic.Is(err))
	_, err = handler.Deliver(context.Background(), db, &weavetest.Tx{})
	assert.True(t, errors.ErrPanic.Is(err))
}

func TestLoggingPassesResults(t *testing.T) {
	h := &weavetest.Handler{
		CheckResult:   tokenswap.CheckResult{Log: "checked"},
		DeliverResult: tokenswap.DeliverResult{Log: "delivered"},
	}
	handler := weavetest.Decorate(h, NewLogging())
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "offer/make"}}

	cres, err := handler.Check(context.Background(), db, tx)
	require.NoError(t, err)
	assert.Equal(t, "checked", cres.Log)
	dres, err := handler.Deliver(context.Background(), db, tx)
	require.NoError(t, err)
	assert.Equal(t, "delivered", dres.Log)

	h.DeliverErr = errors.ErrUnauthorized
	_, err = handler.Deliver(context.Background(), db, tx)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestActionTagger(t *testing.T) {
	h := &weavetest.Handler{}
	handler := weavetest.Decorate(h, NewActionTagger())
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "offer/take"}}

	res, err := handler.Deliver(context.Background(), db, tx)
	require.NoError(t, err)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, []byte(ActionKey), res.Tags[0].Key)
	assert.Equal(t, []byte("offer/take"), res.Tags[0].Value)

	h.DeliverErr = errors.ErrNotFound
	_, err = handler.Deliver(context.Background(), db, tx)
	assert.True(t, errors.ErrNotFound.Is(err))
}
