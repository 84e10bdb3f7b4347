package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fubl84/peakly-sub001/internal/convert"
	grpcserver "github.com/fubl84/peakly-sub001/internal/server/grpc"
)

// ---- grpc dial ----

type bearerCreds struct {
	token  string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

func loadTLS(caPath string, skipVerify bool) (credentials.TransportCredentials, error) {
	if skipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

func dial(g *globals, bearer string) (*grpc.ClientConn, *grpcserver.Client, error) {
	creds := insecure.NewCredentials()
	if !g.plaintext {
		var err error
		if creds, err = loadTLS(g.caPath, g.insecure); err != nil {
			return nil, nil, err
		}
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if bearer != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(bearerCreds{token: bearer, secure: !g.plaintext}))
	}
	cc, err := grpc.NewClient(g.addr, opts...)
	if err != nil {
		return nil, nil, err
	}
	return cc, grpcserver.NewClient(cc), nil
}

// call sends req to method and prints the reply as JSON. auth attaches the stored token.
func (g *globals) call(cmd *cobra.Command, method string, req convert.Object, auth bool) error {
	var token string
	if auth {
		var err error
		if token, err = loadToken(); err != nil {
			return err
		}
	}
	in, err := convert.ToStruct(req)
	if err != nil {
		return err
	}

	cc, cli, err := dial(g, token)
	if err != nil {
		return err
	}
	defer cc.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
	defer cancel()
	out, err := cli.Call(ctx, method, in)
	if err != nil {
		return err
	}
	return printStruct(cmd.OutOrStdout(), out)
}

func printStruct(w io.Writer, s *structpb.Struct) error {
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
