package config

// Static extraction tables. The matcher in pkg/extract is table-driven: these
// values are data loaded at startup, overridable from correlator.yaml, not
// logic baked into the extractors.

// Tables holds the vocabularies and filter lists used by the normalizer.
type Tables struct {
	// Technologies is the fixed vocabulary matched as whole words.
	Technologies []string `yaml:"technologies" json:"technologies"`
	// HostBlacklist lists strings that match a host pattern but are not hosts.
	HostBlacklist []string `yaml:"host_blacklist" json:"host_blacklist"`
	// IgnoreTags lists bracket tags that never denote a service.
	IgnoreTags []string `yaml:"ignore_tags" json:"ignore_tags"`
}

// DefaultTables returns the built-in extraction tables.
func DefaultTables() Tables {
	return Tables{
		Technologies:  defaultTechnologies(),
		HostBlacklist: defaultHostBlacklist(),
		IgnoreTags:    defaultIgnoreTags(),
	}
}

func defaultTechnologies() []string {
	return []string{
		// search / logs
		"opensearch", "kibana", "elasticsearch", "logstash", "fluentd",
		// web servers / runtimes
		"apache", "nginx", "php", "python", "java", "nodejs", "tomcat", "jboss", "wildfly",
		// databases
		"mysql", "postgresql", "mariadb", "mongodb", "redis", "cassandra", "ceph",
		// containers / orchestration
		"docker", "kubernetes", "k8s", "proxmox", "vmware", "vcenter", "esxi", "openstack",
		// ci/cd
		"jenkins", "ansible", "terraform", "gitlab", "github", "bitbucket", "git", "rundeck", "salt",
		// security / cdn
		"imperva", "cloudflare", "akamai", "waf",
		// messaging
		"kafka", "rabbitmq", "activemq",
		// monitoring
		"grafana", "prometheus", "zabbix", "nagios", "datadog",
		// load balancing / proxy
		"haproxy", "keepalived", "lvs", "varnish",
		// cache
		"memcached",
		// cloud providers
		"aws", "azure", "gcp",
		// storage
		"s3", "cloudian", "hyperstore", "netbackup", "nfs",
		// mail
		"dovecot", "postfix", "roundcube", "exim",
		// virtualization
		"qemu", "kvm", "libvirt", "hyper-v", "virtuozzo",
		// os / distros
		"debian", "ubuntu", "centos", "rhel",
		// brand products
		"waas", "dcd", "clipp", "ngcs", "dave",
		// identity / auth
		"keycloak", "iam", "oauth", "ldap", "saml", "openid",
	}
}

func defaultHostBlacklist() []string {
	return []string{
		"https", "http", "image", "browse", "version", "update", "release",
		"node12", "node10", "node11", "node-33", "node-91", "node-601", "node-604", "node-901",
		"utf8", "utf16", "iso8859", "win1252",
		"amd64", "x86", "arm64",
		"eu-south-2", "eu-central-1", "eu-central-2", "us-east-1", "us-west-2",
		"region", "regions",
		"image-2025", "image-2024", "image-2023", "screenshot-1", "screenshot-2",
	}
}

func defaultIgnoreTags() []string {
	return []string{
		"ai", "dev", "smb", "urgent", "qa", "prod", "pre", "test",
		"wip", "todo", "done", "blocked", "review",
		"minor", "major", "critical", "blocker",
		"bug", "feature", "task", "story", "epic",
	}
}

func defaultServiceSynonyms() map[string][]string {
	return map[string][]string{
		"customer area":     {"adc", "area de clientes", "customer system", "arsys customer panel", "área de clientes"},
		"control panel":     {"pdc", "panel de control", "control panels"},
		"s3 object storage": {"s3", "object storage", "ic-s3", "cloudian", "hyperstore"},
		"block storage":     {"ic-block storage", "block storage"},
		"compute":           {"ic-compute", "compute platform", "compute provisioning"},
		"network":           {"ic-network", "network platform", "network provisioning"},
		"mail":              {"email", "e-mail", "mail platform", "dovecot", "postfix"},
		"dns":               {"domain", "dns platform"},
		"dedicated server":  {"dedicated", "bare metal", "physical server"},
		"cloud server":      {"ngcs", "vps", "v-server", "cloud nx"},
		"webhosting":        {"shared hosting", "sharedhosting", "web hosting"},
		"kubernetes":        {"k8s", "container registry", "ic-kubernetes", "keycloak"},
	}
}

func defaultRelatedGroups() map[string][]string {
	return map[string][]string{
		"ionos-cloud": {
			"ic-cis", "ic-sre", "ic-oss", "ic-pss", "ic-bss", "ic-ess",
			"cloud api", "dcd", "dcd api", "compute", "network", "block storage",
			"s3 object storage", "kubernetes", "sre", "iam", "keycloak",
			"iaas provisioning", "storage provisioning", "compute provisioning",
			"network provisioning", "compute platform", "network platform",
			"storage platform", "ic-s3 object storage",
		},
		"arsys": {
			"customer area", "control panel", "mail", "dns", "webhosting",
			"dedicated server", "cloud server", "ar-cis", "ar-pss", "ar-oss",
		},
		"strato": {
			"strato-mail", "strato-webmail", "strato-server", "str-cis", "str-pss",
		},
	}
}

// CustomFields maps logical field names to installation-specific tracker
// field IDs. Injected into the normalizer so no field ID is baked in.
type CustomFields struct {
	StartDateTime         string `yaml:"start_datetime" json:"start_datetime"`
	EndDateTime           string `yaml:"end_datetime" json:"end_datetime"`
	TechEscalation        string `yaml:"tech_escalation" json:"tech_escalation"`
	PermittedUsers        string `yaml:"permitted_users" json:"permitted_users"`
	ResponsibleEntity     string `yaml:"responsible_entity" json:"responsible_entity"`
	Cause                 string `yaml:"cause" json:"cause"`
	Effect                string `yaml:"effect" json:"effect"`
	CustomerImpact        string `yaml:"customer_impact" json:"customer_impact"`
	ChangeCategory        string `yaml:"change_category" json:"change_category"`
	Environments          string `yaml:"environments" json:"environments"`
	AffectedBusinessUnits string `yaml:"affected_business_units" json:"affected_business_units"`
	CausingBusinessUnits  string `yaml:"causing_business_units" json:"causing_business_units"`
	ChangeOwner           string `yaml:"change_owner" json:"change_owner"`
	IncidentOwner         string `yaml:"incident_owner" json:"incident_owner"`
}

// DefaultCustomFields returns the field IDs of the reference installation.
func DefaultCustomFields() CustomFields {
	return CustomFields{
		StartDateTime:         "customfield_10303",
		EndDateTime:           "customfield_10304",
		TechEscalation:        "customfield_12913",
		PermittedUsers:        "customfield_10800",
		ResponsibleEntity:     "customfield_15000",
		Cause:                 "customfield_12915",
		Effect:                "customfield_12918",
		CustomerImpact:        "customfield_12919",
		ChangeCategory:        "customfield_12990",
		Environments:          "customfield_13028",
		AffectedBusinessUnits: "customfield_12921",
		CausingBusinessUnits:  "customfield_12922",
		ChangeOwner:           "customfield_12984",
		IncidentOwner:         "customfield_12909",
	}
}
