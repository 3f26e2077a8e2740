package adapterhost

import (
	"encoding/json"
	"fmt"
	"strings"
)

type invocationInput struct {
	AdapterKey struct {
		AdapterKind string `json:"adapter_kind"`
		ObjectKind  string `json:"object_kind"`
		Identifiers []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"identifiers"`
	} `json:"adapter_key"`
	CredentialConfig *struct {
		Fields []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"credential_fields"`
	} `json:"credential_config"`
	InternalRestCredential *struct {
		UserName string `json:"user_name"`
		Password string `json:"password"`
	} `json:"internal_rest_credential"`
}

// environment derives the variables an adapter process is started with from
// the request body. Entries are in KEY=value form.
func environment(body []byte) ([]string, error) {
	in := invocationInput{}
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fmt.Errorf("failed to parse adapter config: %w", err)
	}

	env := []string{
		"ADAPTER_KIND=" + in.AdapterKey.AdapterKind,
		"ADAPTER_INSTANCE_OBJECT_KIND=" + in.AdapterKey.ObjectKind,
	}

	user, password := "", ""
	if in.InternalRestCredential != nil {
		user, password = in.InternalRestCredential.UserName, in.InternalRestCredential.Password
	}
	env = append(env, "SUITE_API_USER="+user, "SUITE_API_PASSWORD="+password)

	for _, id := range in.AdapterKey.Identifiers {
		env = append(env, strings.ToUpper(id.Key)+"="+id.Value)
	}

	if in.CredentialConfig != nil {
		for _, f := range in.CredentialConfig.Fields {
			env = append(env, "CREDENTIAL_"+strings.ToUpper(f.Key)+"="+f.Value)
		}
	}

	return env, nil
}
