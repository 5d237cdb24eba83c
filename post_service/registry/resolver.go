package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	etcd "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

var ErrNoInstance = errors.New("no post_service instance registered")

/*
   Instances are interchangeable, so clients pick them round robin.
   The list follows the registry: leases that expire drop their instance.
*/

// Resolver tracks the registered post_service instances.
type Resolver struct {
	client    *etcd.Client
	logger    *zap.Logger
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	instances *roundRobin
}

// NewResolver loads the current instances and keeps watching for changes
// until Close.
func NewResolver(ctx context.Context, endpoints []string, logger *zap.Logger) (*Resolver, error) {
	client, err := etcd.New(etcd.Config{Endpoints: endpoints, DialTimeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("init etcd client: %w", err)
	}
	resp, err := client.Get(ctx, servicePrefix, etcd.WithPrefix())
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("list instances: %w", err)
	}

	r := &Resolver{client: client, logger: logger, instances: newRoundRobin()}
	for _, kv := range resp.Kvs {
		r.instances.put(instanceID(kv.Key), string(kv.Value))
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.watch(watchCtx, resp.Header.Revision+1)
	}()
	return r, nil
}

func (r *Resolver) watch(ctx context.Context, rev int64) {
	for res := range r.client.Watch(ctx, servicePrefix, etcd.WithPrefix(), etcd.WithRev(rev)) {
		if res.Canceled {
			r.logger.Warn("etcd watch cancelled", zap.Error(res.Err()))
			return
		}
		if err := res.Err(); err != nil {
			r.logger.Warn("etcd watch error", zap.Error(err))
			continue
		}
		for _, ev := range res.Events {
			id := instanceID(ev.Kv.Key)
			switch ev.Type {
			case etcd.EventTypePut:
				r.logger.Debug("instance added", zap.String("id", id), zap.ByteString("addr", ev.Kv.Value))
				r.instances.put(id, string(ev.Kv.Value))
			case etcd.EventTypeDelete:
				r.logger.Debug("instance removed", zap.String("id", id))
				r.instances.delete(id)
			}
		}
	}
}

// Pick returns the address of the next instance.
func (r *Resolver) Pick() (string, error) {
	return r.instances.next()
}

func (r *Resolver) Close() {
	r.cancel()
	r.client.Close()
	r.wg.Wait()
}

func instanceID(key []byte) string {
	return strings.TrimPrefix(string(key), servicePrefix)
}

type roundRobin struct {
	mu    sync.RWMutex
	idx   atomic.Uint32
	ids   []string
	addrs map[string]string
}

func newRoundRobin() *roundRobin {
	return &roundRobin{addrs: make(map[string]string)}
}

func (rr *roundRobin) put(id, addr string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	if _, ok := rr.addrs[id]; !ok {
		rr.ids = append(rr.ids, id)
	}
	rr.addrs[id] = addr
}

func (rr *roundRobin) delete(id string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	for i, cur := range rr.ids {
		if cur == id {
			rr.ids[i] = rr.ids[len(rr.ids)-1]
			rr.ids = rr.ids[:len(rr.ids)-1]
			delete(rr.addrs, id)
			return
		}
	}
}

func (rr *roundRobin) next() (string, error) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	if len(rr.ids) == 0 {
		return "", ErrNoInstance
	}
	idx := rr.idx.Add(1) % uint32(len(rr.ids))
	return rr.addrs[rr.ids[idx]], nil
}
