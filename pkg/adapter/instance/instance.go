package instance

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/diwise/integration-sdk/pkg/adapter/client"
	"github.com/diwise/integration-sdk/pkg/adapter/errors"
	"github.com/diwise/integration-sdk/pkg/adapter/types/keys"
	"github.com/diwise/integration-sdk/pkg/adapter/types/objects"
)

// AdapterInstance is the object representing a configured instance of an
// adapter, together with the credentials, certificates and collection state
// the platform passes along with every invocation.
//
// As an object it can be added to a collect result, e.g. to report metrics
// about the adapter instance itself.
type AdapterInstance struct {
	*objects.Object

	credential       credential
	connection       client.ConnectionInfo
	certificates     []Certificate
	collectionNumber int
	collectionWindow CollectionWindow
}

// CollectionWindow is the time span, in milliseconds since the epoch, covered
// by the current collection. The end of a window is the start of the next.
type CollectionWindow struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// Certificate is a certificate that has been verified by a CA or accepted
// by a user
type Certificate struct {
	PEMString                  string `json:"cert_pem_string"`
	InvalidHostnameAccepted    bool   `json:"is_invalid_hostname_accepted"`
	ExpiredCertificateAccepted bool   `json:"is_expired_certificate_accepted"`
}

func (c Certificate) PEM() string                        { return c.PEMString }
func (c Certificate) IsInvalidHostnameAccepted() bool    { return c.InvalidHostnameAccepted }
func (c Certificate) IsExpiredCertificateAccepted() bool { return c.ExpiredCertificateAccepted }

type credential struct {
	Key    *string           `json:"credential_key"`
	Fields []credentialField `json:"credential_fields"`
}

type credentialField struct {
	Key        string `json:"key"`
	Value      string `json:"value"`
	IsPassword bool   `json:"is_password"`
}

type adapterKey struct {
	AdapterKind string       `json:"adapter_kind"`
	ObjectKind  string       `json:"object_kind"`
	Name        string       `json:"name"`
	Identifiers []identifier `json:"identifiers"`
}

type identifier struct {
	Key                string `json:"key"`
	Value              string `json:"value"`
	IsPartOfUniqueness *bool  `json:"is_part_of_uniqueness"`
}

type clusterConnectionInfo struct {
	HostName string `json:"host_name"`
	UserName string `json:"user_name"`
	Password string `json:"password"`
	Port     *int   `json:"port"`
	Verify   bool   `json:"verify"`
}

type input struct {
	AdapterKey            *adapterKey            `json:"adapter_key"`
	CredentialConfig      *credential            `json:"credential_config"`
	ClusterConnectionInfo *clusterConnectionInfo `json:"cluster_connection_info"`
	CertificateConfig     *struct {
		Certificates []Certificate `json:"certificates"`
	} `json:"certificate_config"`
	CollectionNumber *int              `json:"collection_number"`
	CollectionWindow *CollectionWindow `json:"collection_window"`
}

// New parses the input document the platform sends to an adapter. The
// document must contain an adapter key, everything else is optional.
func New(document []byte) (*AdapterInstance, error) {
	in := input{}
	if err := json.Unmarshal(document, &in); err != nil {
		return nil, fmt.Errorf("failed to parse adapter instance: %s (%w)", err.Error(), errors.ErrNoInput)
	}

	if in.AdapterKey == nil {
		return nil, errors.NewNoInputError("cannot read adapter instance key from input")
	}

	ai := &AdapterInstance{
		Object:           objects.New(in.AdapterKey.toKey()),
		credential:       credential{},
		connection:       client.NewConnectionInfo("", "", ""),
		certificates:     []Certificate{},
		collectionWindow: CollectionWindow{StartTime: 0, EndTime: float64(time.Now().UnixMilli())},
	}

	if in.CredentialConfig != nil {
		ai.credential = *in.CredentialConfig
	}

	if cci := in.ClusterConnectionInfo; cci != nil {
		options := []client.ConnectionOption{client.VerifyTLS(cci.Verify)}
		if cci.Port != nil {
			options = append(options, client.Port(*cci.Port))
		}
		ai.connection = client.NewConnectionInfo(cci.HostName, cci.UserName, cci.Password, options...)
	}

	if in.CertificateConfig != nil && in.CertificateConfig.Certificates != nil {
		ai.certificates = in.CertificateConfig.Certificates
	}

	if in.CollectionNumber != nil {
		ai.collectionNumber = *in.CollectionNumber
	}

	if in.CollectionWindow != nil {
		ai.collectionWindow = *in.CollectionWindow
	}

	return ai, nil
}

func (k adapterKey) toKey() keys.Key {
	identifiers := make([]keys.Identifier, 0, len(k.Identifiers))
	for _, i := range k.Identifiers {
		if i.IsPartOfUniqueness == nil || *i.IsPartOfUniqueness {
			identifiers = append(identifiers, keys.NewIdentifier(i.Key, i.Value))
		} else {
			identifiers = append(identifiers, keys.NewNonUniqueIdentifier(i.Key, i.Value))
		}
	}

	return keys.New(k.AdapterKind, k.ObjectKind, k.Name, identifiers...)
}

// CredentialType returns the key of the credential type used by this adapter
// instance, or false if it does not have a credential
func (ai *AdapterInstance) CredentialType() (string, bool) {
	if ai.credential.Key == nil {
		return "", false
	}
	return *ai.credential.Key, true
}

func (ai *AdapterInstance) CredentialValue(key string) (string, bool) {
	idx := slices.IndexFunc(ai.credential.Fields, func(f credentialField) bool { return f.Key == key })
	if idx < 0 {
		return "", false
	}
	return ai.credential.Fields[idx].Value, true
}

// CredentialFields returns every credential field, keyed by field key
func (ai *AdapterInstance) CredentialFields() map[string]string {
	fields := make(map[string]string, len(ai.credential.Fields))
	for _, f := range ai.credential.Fields {
		fields[f.Key] = f.Value
	}
	return fields
}

func (ai *AdapterInstance) Certificates() []Certificate {
	return slices.Clone(ai.certificates)
}

func (ai *AdapterInstance) CollectionNumber() int {
	return ai.collectionNumber
}

func (ai *AdapterInstance) CollectionWindow() CollectionWindow {
	return ai.collectionWindow
}

func (ai *AdapterInstance) SuiteAPIConnectionInfo() client.ConnectionInfo {
	return ai.connection
}

// SuiteAPIClient creates a client for the Suite API instance that launched
// this adapter. Callers are responsible for closing it.
func (ai *AdapterInstance) SuiteAPIClient(options ...client.ClientOption) *client.SuiteAPIClient {
	return client.New(ai.connection, options...)
}
