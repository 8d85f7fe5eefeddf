package store

import (
	"context"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// Etcd implements Store on top of etcd transactions and leases. The
// compare-and-act primitives map to single Txn round trips guarded by a
// value comparison. Etcd leases tick in whole seconds, so TTLs are
// rounded up; callers needing millisecond expiry precision should prefer
// the Redis backend.
type Etcd struct {
	client *clientv3.Client
}

// NewEtcd creates an etcd store using the provided client. The client's
// connection lifecycle stays with the caller.
func NewEtcd(client *clientv3.Client) *Etcd {
	return &Etcd{client: client}
}

func etcdSeconds(ttl time.Duration) int64 {
	secs := int64((ttl + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// TrySet sets key=value with expiry ttl only if the key is absent.
func (e *Etcd) TrySet(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	lease, err := e.client.Grant(ctx, etcdSeconds(ttl))
	if err != nil {
		return false, err
	}
	resp, err := e.client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, value, clientv3.WithLease(lease.ID))).
		Commit()
	if err != nil {
		return false, err
	}
	if !resp.Succeeded {
		// The key is held by someone else, drop the unused lease.
		_, _ = e.client.Revoke(ctx, lease.ID)
		return false, nil
	}
	return true, nil
}

// CompareDelete deletes key iff its current value equals expected.
func (e *Etcd) CompareDelete(ctx context.Context, key, expected string) (bool, error) {
	resp, err := e.client.Txn(ctx).
		If(clientv3.Compare(clientv3.Value(key), "=", expected)).
		Then(clientv3.OpDelete(key)).
		Commit()
	if err != nil {
		return false, err
	}
	return resp.Succeeded, nil
}

// CompareExpire re-puts the key under a fresh lease iff its current value
// equals expected. The previous lease no longer owns the key afterwards,
// so its eventual expiry is a no-op.
func (e *Etcd) CompareExpire(ctx context.Context, key, expected string, ttl time.Duration) (bool, error) {
	lease, err := e.client.Grant(ctx, etcdSeconds(ttl))
	if err != nil {
		return false, err
	}
	resp, err := e.client.Txn(ctx).
		If(clientv3.Compare(clientv3.Value(key), "=", expected)).
		Then(clientv3.OpPut(key, expected, clientv3.WithLease(lease.ID))).
		Commit()
	if err != nil {
		return false, err
	}
	if !resp.Succeeded {
		_, _ = e.client.Revoke(ctx, lease.ID)
		return false, nil
	}
	return true, nil
}

// Get returns the current value of key, with ok reporting whether the key exists.
func (e *Etcd) Get(ctx context.Context, key string) (string, bool, error) {
	resp, err := e.client.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if len(resp.Kvs) == 0 {
		return "", false, nil
	}
	return string(resp.Kvs[0].Value), true, nil
}
