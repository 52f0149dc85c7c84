package scm

import (
	"context"
	"regexp"
	"strings"
)

// DiscoveryMethod labels which step of the fallback chain resolved a repo.
type DiscoveryMethod string

const (
	MethodWorkloadAnnotation DiscoveryMethod = "workload_annotation"
	MethodAlertLabel         DiscoveryMethod = "alert_label"
	MethodServiceCatalog     DiscoveryMethod = "service_catalog"
	MethodThirdPartyCatalog  DiscoveryMethod = "third_party_catalog"
	MethodNamingConvention   DiscoveryMethod = "naming_convention"
	MethodHelmRelease        DiscoveryMethod = "helm_release"
	MethodOCILabels          DiscoveryMethod = "oci_labels"
	MethodNotFound           DiscoveryMethod = ""
)

// Result is the outcome of a repo discovery attempt.
type Result struct {
	Repo         string
	Method       DiscoveryMethod
	IsThirdParty bool
	Verified     bool
}

// Catalog is a static, case-insensitive workload-name -> repo mapping, used
// for both the first-party and third-party catalog discovery steps.
type Catalog map[string]string

func (c Catalog) lookup(name string) (string, bool) {
	for k, v := range c {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// workloadSuffixes are the Kubernetes-idiom workload-role suffixes the
// naming-convention and catalog-fuzzy steps strip before retrying.
var workloadSuffixes = []string{"-job", "-worker", "-executor", "-handler", "-cronjob", "-service"}

// Discoverer runs the repo discovery chain (§4.2), first hit wins: workload
// annotation, alert label, service catalog, third-party catalog, naming
// convention. It has no Helm release or OCI image label step; a workload
// none of the five steps resolves is reported as not found.
type Discoverer struct {
	client           *Client
	defaultOrg       string
	serviceCatalog   Catalog
	thirdPartyCatalog Catalog
}

// NewDiscoverer builds a Discoverer. client may be nil (verification steps
// are then skipped, matching "if verification is unavailable").
func NewDiscoverer(client *Client, defaultOrg string, serviceCatalog, thirdPartyCatalog Catalog) *Discoverer {
	return &Discoverer{
		client:            client,
		defaultOrg:        defaultOrg,
		serviceCatalog:    serviceCatalog,
		thirdPartyCatalog: thirdPartyCatalog,
	}
}

// Discover runs the chain against one workload. workloadAnnotations comes
// from the K8s workload object's annotations map; alertLabels from the
// firing alert.
func (d *Discoverer) Discover(ctx context.Context, workloadName string, workloadAnnotations, alertLabels map[string]string) Result {
	if repo := firstNonEmptyAnnotation(workloadAnnotations, "github.com/repo", "github-repo"); validRepoFormat(repo) {
		return Result{Repo: repo, Method: MethodWorkloadAnnotation, Verified: true}
	}

	if repo := firstNonEmptyAnnotation(alertLabels, "github_repo", "github_repository"); validRepoFormat(repo) {
		return Result{Repo: repo, Method: MethodAlertLabel, Verified: true}
	}

	if repo, ok := catalogFuzzyLookup(d.serviceCatalog, workloadName); ok {
		return Result{Repo: repo, Method: MethodServiceCatalog, Verified: true}
	}

	if repo, ok := catalogFuzzyLookup(d.thirdPartyCatalog, workloadName); ok {
		return Result{Repo: repo, Method: MethodThirdPartyCatalog, IsThirdParty: true, Verified: true}
	}

	if d.defaultOrg != "" {
		cleaned := CleanWorkloadName(workloadName)
		candidates := namingCandidates(d.defaultOrg, cleaned)
		for _, candidate := range candidates {
			if d.client == nil {
				return Result{Repo: candidate, Method: MethodNamingConvention, Verified: false}
			}
			ok, err := d.client.RepoExists(ctx, candidate)
			if err == nil && ok {
				return Result{Repo: candidate, Method: MethodNamingConvention, Verified: true}
			}
		}
		if len(candidates) > 0 {
			return Result{Repo: candidates[0], Method: MethodNamingConvention, Verified: false}
		}
	}

	// There is no Helm release secret or OCI image label step; the chain
	// ends here with "not found".

	return Result{Method: MethodNotFound}
}

func firstNonEmptyAnnotation(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var repoFormatRegex = regexp.MustCompile(`^[^/]+/[^/]+$`)

func validRepoFormat(repo string) bool {
	return repo != "" && repoFormatRegex.MatchString(repo)
}

// ValidRepoFormat reports whether repo matches the "org/repo" shape (P8),
// exported for callers outside the discovery chain (the github.* chat tools).
func ValidRepoFormat(repo string) bool { return validRepoFormat(repo) }

// catalogFuzzyLookup implements step 3/4's fuzzy pass: try the raw name,
// then strip a known workload-role suffix and try both the stripped name
// and "<stripped>-service".
func catalogFuzzyLookup(catalog Catalog, rawName string) (string, bool) {
	if catalog == nil {
		return "", false
	}
	if repo, ok := catalog.lookup(rawName); ok {
		return repo, true
	}
	stripped := stripWorkloadSuffix(rawName)
	if stripped == rawName {
		return "", false
	}
	if repo, ok := catalog.lookup(stripped); ok {
		return repo, true
	}
	if repo, ok := catalog.lookup(stripped + "-service"); ok {
		return repo, true
	}
	return "", false
}

// namingCandidates builds the naming-convention guesses for cleanedName,
// most-specific first: the suffix-stripped form (if a role suffix was
// present) ahead of the bare cleaned name, since the stripped form is the
// more likely real repo name.
func namingCandidates(org, cleanedName string) []string {
	if cleanedName == "" {
		return nil
	}
	var candidates []string
	if stripped := stripWorkloadSuffix(cleanedName); stripped != cleanedName {
		candidates = append(candidates, org+"/"+stripped)
	}
	candidates = append(candidates, org+"/"+cleanedName)
	return candidates
}

func stripWorkloadSuffix(name string) string {
	for _, suffix := range workloadSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// StripWorkloadSuffix strips one known workload-role suffix (e.g. "-worker",
// "-executor") from name, for callers outside this package that need the
// same fuzzy-matching normalization the discovery chain uses (e.g. the
// historical-fallback collector's log-name regex).
func StripWorkloadSuffix(name string) string { return stripWorkloadSuffix(name) }

// Name-cleaning regexes, applied in order (a)-(d), grounded on §4.2's
// workload-name cleaning algorithm.
var (
	jobPodPattern      = regexp.MustCompile(`^(.+)-\d+-\d+-[a-z0-9]{5,10}$`)
	jobPattern         = regexp.MustCompile(`^(.+)-\d+-\d+$`)
	cronJobTimePattern = regexp.MustCompile(`^(.+)-\d{8,10}$`)
	hashSegmentPattern = regexp.MustCompile(`^[a-z0-9]{5,10}$`)
	hasVowel           = regexp.MustCompile(`[aeiou]`)
	hasDigit           = regexp.MustCompile(`[0-9]`)
	hasAlpha           = regexp.MustCompile(`[a-z]`)
)

// CleanWorkloadName strips Kubernetes-generated suffixes from a pod/workload
// name so it can be matched against a repo name. Idempotent: cleaning an
// already-cleaned name is a no-op (P7).
func CleanWorkloadName(name string) string {
	if m := jobPodPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}

	if idx := strings.LastIndex(name, "-"); idx >= 0 {
		segment := name[idx+1:]
		if isProbableHash(segment) {
			return name[:idx]
		}
	}

	if m := jobPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}

	if m := cronJobTimePattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}

	return name
}

// isProbableHash matches a trailing replicaset/pod hash segment: lowercase
// alphanumeric, 5-10 chars, and either no vowels or a mix of letters and
// digits (both traits are typical of generated hashes, atypical of English
// words).
func isProbableHash(segment string) bool {
	if !hashSegmentPattern.MatchString(segment) {
		return false
	}
	noVowels := !hasVowel.MatchString(segment)
	mixedAlnum := hasAlpha.MatchString(segment) && hasDigit.MatchString(segment)
	return noVowels || mixedAlnum
}
