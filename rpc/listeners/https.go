// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/rpc"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/fault"
)

const (
	httpsLogName     = "https_rpc"
	readWriteTimeout = 10 * time.Second
	maximumBodySize  = 1 << 20

	// URL paths, the last element is the key of the allow table
	rpcPath     = "/accountd/rpc"
	detailsPath = "/accountd/details"
	detailsName = "details"
)

// HTTPSConfiguration - configuration file data for the HTTPS listener
//
// Allow maps a path name to the CIDR blocks that may use it
type HTTPSConfiguration struct {
	MaximumConnections uint64              `gluamapper:"maximum_connections" json:"maximum_connections"`
	Listen             []string            `gluamapper:"listen" json:"listen"`
	Certificate        string              `gluamapper:"certificate" json:"certificate"`
	PrivateKey         string              `gluamapper:"private_key" json:"private_key"`
	Allow              map[string][]string `gluamapper:"allow" json:"allow"`
}

// DetailsFunc - produce the body of a details request
type DetailsFunc func() interface{}

// HTTPSListener - JSON-RPC by POST plus a restricted details page
type HTTPSListener struct {
	sync.Mutex

	log             *logger.L
	server          *rpc.Server
	count           *Connections
	maxConnections  uint64
	details         DetailsFunc
	allow           map[string][]*net.IPNet
	tlsConfig       *tls.Config
	listenIPAndPort []string
	servers         []*http.Server
	listeners       []net.Listener
}

// NewHTTPS - validate the configuration and create an unstarted listener
//
// no listen addresses disables the listener and returns nil
func NewHTTPS(
	configuration *HTTPSConfiguration,
	log *logger.L,
	count *Connections,
	server *rpc.Server,
	tlsConfig *tls.Config,
	details DetailsFunc,
) (*HTTPSListener, error) {
	if 0 == len(configuration.Listen) {
		log.Infof("disable: %s", httpsLogName)
		return nil, nil
	}

	if configuration.MaximumConnections < minConnectionCount {
		log.Errorf("invalid %s maximum connection limit: %d", httpsLogName, configuration.MaximumConnections)
		return nil, fault.MissingParameters
	}

	listen := make([]string, len(configuration.Listen))
	copy(listen, configuration.Listen)
	if _, err := parseListenAddress(listen, log); nil != err {
		return nil, err
	}

	allow := make(map[string][]*net.IPNet)
	for path, addresses := range configuration.Allow {
		set := make([]*net.IPNet, len(addresses))
		for i, ip := range addresses {
			_, cidr, err := net.ParseCIDR(strings.TrimSpace(ip))
			if nil != err {
				log.Errorf("allow: %q  cidr: %q  error: %s", path, ip, err)
				return nil, fault.InvalidListenAddress
			}
			set[i] = cidr
		}
		allow[path] = set
	}

	cfg := tlsConfig.Clone()
	cfg.NextProtos = []string{"http/1.1"}

	h := &HTTPSListener{
		log:             log,
		server:          server,
		count:           count,
		maxConnections:  configuration.MaximumConnections,
		details:         details,
		allow:           allow,
		tlsConfig:       cfg,
		listenIPAndPort: listen,
	}
	return h, nil
}

// Serve - open every listen address and start serving
func (h *HTTPSListener) Serve() error {
	h.Lock()
	defer h.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc(rpcPath, h.rpc)
	mux.HandleFunc(detailsPath, h.detailsPage)
	mux.HandleFunc("/", h.root)

	for _, listen := range h.listenIPAndPort {
		h.log.Infof("starting server: %s on: %q", httpsLogName, listen)

		ln, err := net.Listen("tcp", listen)
		if nil != err {
			h.log.Errorf("%s listen error: %s", httpsLogName, err)
			h.closeAll()
			return err
		}

		s := &http.Server{
			Handler:        mux,
			ReadTimeout:    readWriteTimeout,
			WriteTimeout:   readWriteTimeout,
			MaxHeaderBytes: 1 << 20,
		}
		h.servers = append(h.servers, s)
		h.listeners = append(h.listeners, ln)

		go func(ln net.Listener) {
			err := s.Serve(tls.NewListener(ln, h.tlsConfig))
			h.log.Infof("%s terminated: %s", httpsLogName, err)
		}(ln)
	}
	return nil
}

// Addresses - the bound addresses, valid after Serve
func (h *HTTPSListener) Addresses() []net.Addr {
	h.Lock()
	defer h.Unlock()

	addrs := make([]net.Addr, len(h.listeners))
	for i, l := range h.listeners {
		addrs[i] = l.Addr()
	}
	return addrs
}

// Close - shut down all servers
func (h *HTTPSListener) Close() error {
	h.Lock()
	defer h.Unlock()
	h.closeAll()
	return nil
}

func (h *HTTPSListener) closeAll() {
	for _, s := range h.servers {
		_ = s.Close()
	}
	for _, l := range h.listeners {
		_ = l.Close()
	}
	h.servers = nil
	h.listeners = nil
}

// adapts a request/response pair to the codec's connection
type internalConnection struct {
	in      io.Reader
	out     io.Writer
	written bool
}

func (c *internalConnection) Read(p []byte) (int, error) {
	return c.in.Read(p)
}

func (c *internalConnection) Write(d []byte) (int, error) {
	c.written = true
	return c.out.Write(d)
}

func (c *internalConnection) Close() error {
	return nil
}

func (h *HTTPSListener) root(w http.ResponseWriter, r *http.Request) {
	sendError(w, http.StatusNotFound)
}

// one JSON-RPC request per POST
func (h *HTTPSListener) rpc(w http.ResponseWriter, r *http.Request) {
	if http.MethodPost != r.Method {
		sendError(w, http.StatusMethodNotAllowed)
		return
	}

	if !h.count.acquire(h.maxConnections) {
		sendError(w, http.StatusServiceUnavailable)
		return
	}
	defer h.count.release()

	body := http.MaxBytesReader(w, r.Body, maximumBodySize)
	conn := &internalConnection{in: body, out: w}
	codec := NewServerCodec(conn)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if err := h.server.ServeRequest(codec); nil != err {
		h.log.Warnf("rpc request from: %s  error: %s", r.RemoteAddr, err)

		// a request that could be parsed already has its error reply
		if !conn.written {
			sendError(w, http.StatusBadRequest)
		}
	}
}

func (h *HTTPSListener) detailsPage(w http.ResponseWriter, r *http.Request) {
	if http.MethodGet != r.Method {
		sendError(w, http.StatusMethodNotAllowed)
		return
	}

	if !h.allowed(detailsName, r.RemoteAddr) {
		h.log.Warnf("deny access: %q", r.RemoteAddr)
		sendError(w, http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if err := json.NewEncoder(w).Encode(h.details()); nil != err {
		h.log.Errorf("details encode error: %s", err)
	}
}

// a path missing from the allow table is closed to everyone
func (h *HTTPSListener) allowed(name string, remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if nil != err {
		return false
	}
	ip := net.ParseIP(host)
	if nil == ip {
		return false
	}
	for _, cidr := range h.allow[name] {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

func sendError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Message string `json:"message"`
	}{
		Message: http.StatusText(status),
	})
}
