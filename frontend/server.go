package frontend

import (
	"context"
	"net/http"
	"time"

	rpc "github.com/alpacahq/rpc/rpc2"
	"github.com/alpacahq/rpc/rpc2/json2"

	"github.com/termlog/cirstore/cirfile"
	"github.com/termlog/cirstore/metrics"
	"github.com/termlog/cirstore/ptystore"
	"github.com/termlog/cirstore/utils"
	"github.com/termlog/cirstore/utils/log"
)

// PtyStore is the storage the DataService serves.
type PtyStore interface {
	CreateCmdPtyFile(ctx context.Context, screenId, lineId string, maxSize int64) error
	StatCmdPtyFile(ctx context.Context, screenId, lineId string) (*cirfile.Stat, error)
	AppendToCmdPtyBlob(ctx context.Context, screenId, lineId string, data []byte, pos int64) (*ptystore.PtyDataUpdate, error)
	ReadFullPtyOutFile(ctx context.Context, screenId, lineId string) (int64, []byte, error)
	ReadPtyOutFileAtOffset(ctx context.Context, screenId, lineId string, offset, maxSize int64) (int64, []byte, error)
	DeletePtyOutFile(ctx context.Context, screenId, lineId string) error
	DeleteScreenDir(ctx context.Context, screenId string) error
	ScreenDiskSize(screenId string) (ptystore.DiskSize, error)
	FullScreenDiskSize() (map[string]ptystore.DiskSize, error)
}

func NewDataService(store PtyStore, maxReadSize int64) *DataService {
	return &DataService{
		store:       store,
		maxReadSize: maxReadSize,
	}
}

type DataService struct {
	store       PtyStore
	maxReadSize int64
}

type RPCServer struct {
	*rpc.Server
}

func (s *RPCServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	w.Header().Set("cirstore-version", utils.GitHash)
	s.Server.ServeHTTP(w, r)
	metrics.RPCTotalRequestsTotal.Inc()
	metrics.RPCTotalRequestDuration.Observe(time.Since(start).Seconds())
}

// NewServer registers a DataService over store. Reads are capped at
// maxReadSize bytes per call.
func NewServer(store PtyStore, maxReadSize int64) (*RPCServer, *DataService) {
	s := &RPCServer{
		Server: rpc.NewServer(),
	}
	s.RegisterCodec(json2.NewCodec(), "application/json")
	s.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")
	s.RegisterAfterFunc(after)
	service := NewDataService(store, maxReadSize)
	err := s.RegisterService(service, "")
	if err != nil {
		log.Error("Failed to register service - Error: %v", err)
	}
	return s, service
}

func after(i *rpc.RequestInfo) {
	metrics.RPCSuccessfulRequestsTotal.WithLabelValues(i.Method).Inc()
}
