package main

type parameter struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Default  any    `json:"default,omitempty"`
	Required bool   `json:"required"`
	Advanced bool   `json:"advanced,omitempty"`
	Password bool   `json:"password,omitempty"`
}

type credentialType struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Fields []parameter `json:"fields"`
}

// definition describes the extension to the platform. It has no object
// types of its own since it only adds metrics to objects owned by the
// PostgreSQL management pack.
type definition struct {
	Kind            string           `json:"adapter_kind"`
	Label           string           `json:"adapter_label"`
	Parameters      []parameter      `json:"parameters"`
	CredentialTypes []credentialType `json:"credential_types"`
	ObjectTypes     []string         `json:"object_types"`
}

func (d definition) AdapterType() string {
	return d.Kind
}

func newDefinition() definition {
	return definition{
		Kind:  adapterKind,
		Label: adapterName,
		Parameters: []parameter{
			{Key: "host", Label: "PostgreSQL Host", Type: "string", Required: true},
			{Key: "port", Label: "Port", Type: "integer", Default: 5432, Required: true},
			{Key: "dbname", Label: "Maintenance Database", Type: "string", Default: "postgres", Advanced: true},
			{Key: "sslmode", Label: "SSL Mode", Type: "string", Default: "disable", Advanced: true},
			{Key: "container_memory_limit", Label: "Adapter Memory Limit (MB)", Type: "integer", Default: 1024, Required: true, Advanced: true},
		},
		CredentialTypes: []credentialType{
			{
				Key:   "postgres_user",
				Label: "PostgreSQL User",
				Fields: []parameter{
					{Key: "username", Label: "Username", Type: "string", Required: true},
					{Key: "password", Label: "Password", Type: "string", Required: true, Password: true},
				},
			},
		},
		ObjectTypes: []string{},
	}
}
