package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		Name     string
		Mutate   func(*DeploymentSpec)
		Expected string
	}{
		{
			Name:     "missing name",
			Mutate:   func(spec *DeploymentSpec) { spec.Name = "" },
			Expected: "name is required",
		},
		{
			Name:     "missing namespace",
			Mutate:   func(spec *DeploymentSpec) { spec.Namespace = "" },
			Expected: "namespace is required",
		},
		{
			Name:     "no labels",
			Mutate:   func(spec *DeploymentSpec) { spec.Labels = nil },
			Expected: "at least one label is required",
		},
		{
			Name:     "negative replicas",
			Mutate:   func(spec *DeploymentSpec) { spec.Replicas = -1 },
			Expected: "replicas must be non-negative: got -1",
		},
		{
			Name:     "missing image",
			Mutate:   func(spec *DeploymentSpec) { spec.Image = "" },
			Expected: "image is required",
		},
		{
			Name:     "bad pull policy",
			Mutate:   func(spec *DeploymentSpec) { spec.PullPolicy = "Sometimes" },
			Expected: `pull policy must be one of Always, IfNotPresent or Never: got "Sometimes"`,
		},
		{
			Name:     "port too low",
			Mutate:   func(spec *DeploymentSpec) { spec.ContainerPort = 0 },
			Expected: "container port must be within 1-65535: got 0",
		},
		{
			Name:     "port too high",
			Mutate:   func(spec *DeploymentSpec) { spec.ContainerPort = 70000 },
			Expected: "container port must be within 1-65535: got 70000",
		},
		{
			Name: "duplicate env key",
			Mutate: func(spec *DeploymentSpec) {
				spec.Env = append(spec.Env, EnvVar{Name: "MONGO_URI", Value: "mongodb://other:27017/"})
			},
			Expected: `duplicate env key "MONGO_URI"`,
		},
		{
			Name: "empty env key",
			Mutate: func(spec *DeploymentSpec) {
				spec.Env = append(spec.Env, EnvVar{Value: "orphan"})
			},
			Expected: "env keys cannot be empty",
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			spec := StockETL()
			tc.Mutate(&spec)

			err := spec.Validate()
			require.ErrorContains(t, err, "invalid deployment descriptor")
			require.ErrorContains(t, err, tc.Expected)
		})
	}
}

func TestValidateZeroReplicasOK(t *testing.T) {
	spec := StockETL()
	spec.Replicas = 0
	require.NoError(t, spec.Validate())
}

func TestValidateReportsAllViolations(t *testing.T) {
	spec := StockETL()
	spec.Name = ""
	spec.Image = ""
	spec.ContainerPort = -1

	err := spec.Validate()
	require.ErrorContains(t, err, "name is required")
	require.ErrorContains(t, err, "image is required")
	require.ErrorContains(t, err, "container port must be within 1-65535")
}

func TestValidateManifest(t *testing.T) {
	t.Run("rendered deployment passes", func(t *testing.T) {
		require.NoError(t, ValidateManifest(StockETL().Deployment(RenderOpts{})))
	})

	t.Run("selector mismatch", func(t *testing.T) {
		deployment := StockETL().Deployment(RenderOpts{})
		deployment.Spec.Selector = &metav1.LabelSelector{MatchLabels: map[string]string{"app": "other"}}

		err := ValidateManifest(deployment)
		require.ErrorContains(t, err, "selector label app=other is not present on the pod template")
	})

	t.Run("missing selector", func(t *testing.T) {
		deployment := StockETL().Deployment(RenderOpts{})
		deployment.Spec.Selector = nil

		require.ErrorContains(t, ValidateManifest(deployment), "selector match labels are required")
	})

	t.Run("negative replicas", func(t *testing.T) {
		deployment := StockETL().Deployment(RenderOpts{})
		deployment.Spec.Replicas = ptr[int32](-2)

		require.ErrorContains(t, ValidateManifest(deployment), "replicas must be non-negative: got -2")
	})

	t.Run("no containers", func(t *testing.T) {
		deployment := StockETL().Deployment(RenderOpts{})
		deployment.Spec.Template.Spec.Containers = nil

		require.ErrorContains(t, ValidateManifest(deployment), "expected exactly one container: got 0")
	})

	t.Run("empty manifest", func(t *testing.T) {
		err := ValidateManifest(&appsv1.Deployment{})
		require.ErrorContains(t, err, "metadata.name is required")
		require.ErrorContains(t, err, "selector match labels are required")
	})
}
