package frontend_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termlog/cirstore/frontend"
	"github.com/termlog/cirstore/ptystore"
)

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func setup(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := ptystore.New(ptystore.Config{
		HomeDir:        t.TempDir(),
		TempDir:        t.TempDir(),
		DefaultMaxSize: 64,
		LockTimeout:    100 * time.Millisecond,
	})
	require.Nil(t, err)
	serv, _ := frontend.NewServer(store, 16)
	srv := httptest.NewServer(serv)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method string, params, reply interface{}) *rpcResponse {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	})
	require.Nil(t, err)
	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader(body))
	require.Nil(t, err)
	defer resp.Body.Close()

	var rr rpcResponse
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&rr))
	if rr.Error == nil && reply != nil {
		require.Nil(t, json.Unmarshal(rr.Result, reply))
	}
	return &rr
}

func TestNewServer(t *testing.T) {
	serv, _ := frontend.NewServer(nil, 0)
	for _, method := range []string{"Create", "Stat", "Append", "ReadAll", "ReadAt", "Delete", "DiskUsage"} {
		assert.True(t, serv.HasMethod("DataService."+method), method)
	}
}

func TestDataService(t *testing.T) {
	srv := setup(t)
	screenId, lineId := uuid.New().String(), uuid.New().String()
	line := frontend.LineArgs{ScreenId: screenId, LineId: lineId}

	rr := call(t, srv, "DataService.Create", frontend.CreateArgs{LineArgs: line}, &frontend.CreateReply{})
	require.Nil(t, rr.Error)

	var appendReply frontend.AppendReply
	data := "0123456789abcdefghij"
	rr = call(t, srv, "DataService.Append", frontend.AppendArgs{
		LineArgs: line,
		Pos:      0,
		Data64:   base64.StdEncoding.EncodeToString([]byte(data)),
	}, &appendReply)
	require.Nil(t, rr.Error)
	assert.Equal(t, int64(20), appendReply.Update.PtyDataLen)

	var st frontend.StatReply
	rr = call(t, srv, "DataService.Stat", line, &st)
	require.Nil(t, rr.Error)
	assert.Equal(t, int64(64), st.MaxSize)
	assert.Equal(t, int64(20), st.DataSize)

	var readReply frontend.ReadReply
	rr = call(t, srv, "DataService.ReadAll", line, &readReply)
	require.Nil(t, rr.Error)
	decoded, err := base64.StdEncoding.DecodeString(readReply.Data64)
	require.Nil(t, err)
	assert.Equal(t, data, string(decoded))

	// capped by the server's max read size
	rr = call(t, srv, "DataService.ReadAt", frontend.ReadAtArgs{LineArgs: line, Offset: 2, MaxSize: 100}, &readReply)
	require.Nil(t, rr.Error)
	assert.Equal(t, int64(2), readReply.Offset)
	assert.Equal(t, int64(16), readReply.DataLen)

	var du frontend.DiskUsageReply
	rr = call(t, srv, "DataService.DiskUsage", frontend.DiskUsageArgs{}, &du)
	require.Nil(t, rr.Error)
	assert.Equal(t, 1, du.Screens[screenId].NumFiles)

	rr = call(t, srv, "DataService.Delete", frontend.DeleteArgs{ScreenId: screenId, LineId: lineId}, nil)
	require.Nil(t, rr.Error)
	rr = call(t, srv, "DataService.Stat", line, nil)
	assert.NotNil(t, rr.Error)
}

func TestReadAtWithoutLimit(t *testing.T) {
	store, err := ptystore.New(ptystore.Config{
		HomeDir:        t.TempDir(),
		TempDir:        t.TempDir(),
		DefaultMaxSize: 64,
		LockTimeout:    100 * time.Millisecond,
	})
	require.Nil(t, err)
	serv, _ := frontend.NewServer(store, 0)
	srv := httptest.NewServer(serv)
	defer srv.Close()

	line := frontend.LineArgs{ScreenId: uuid.New().String(), LineId: uuid.New().String()}
	rr := call(t, srv, "DataService.Create", frontend.CreateArgs{LineArgs: line}, &frontend.CreateReply{})
	require.Nil(t, rr.Error)
	data := "0123456789abcdefghij"
	rr = call(t, srv, "DataService.Append", frontend.AppendArgs{
		LineArgs: line,
		Data64:   base64.StdEncoding.EncodeToString([]byte(data)),
	}, &frontend.AppendReply{})
	require.Nil(t, rr.Error)

	// no server cap and no requested size reads everything after the offset
	var readReply frontend.ReadReply
	rr = call(t, srv, "DataService.ReadAt", frontend.ReadAtArgs{LineArgs: line, Offset: 5}, &readReply)
	require.Nil(t, rr.Error)
	assert.Equal(t, int64(5), readReply.Offset)
	assert.Equal(t, int64(15), readReply.DataLen)
	decoded, err := base64.StdEncoding.DecodeString(readReply.Data64)
	require.Nil(t, err)
	assert.Equal(t, data[5:], string(decoded))

	rr = call(t, srv, "DataService.ReadAt", frontend.ReadAtArgs{LineArgs: line, Offset: 5, MaxSize: 3}, &readReply)
	require.Nil(t, rr.Error)
	assert.Equal(t, int64(3), readReply.DataLen)
}

func TestDataServiceErrors(t *testing.T) {
	srv := setup(t)

	rr := call(t, srv, "DataService.Create", frontend.CreateArgs{LineArgs: frontend.LineArgs{ScreenId: "x", LineId: "y"}}, nil)
	require.NotNil(t, rr.Error)
	assert.Contains(t, rr.Error.Message, "invalid id")

	rr = call(t, srv, "DataService.Append", frontend.AppendArgs{
		LineArgs: frontend.LineArgs{ScreenId: uuid.New().String(), LineId: uuid.New().String()},
		Data64:   "!!not base64",
	}, nil)
	assert.NotNil(t, rr.Error)
}
