package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"
	_ "k8s.io/client-go/plugin/pkg/client/auth"
	"k8s.io/client-go/tools/clientcmd"

	"scenarist/pkg/core"
	"scenarist/pkg/logging"
)

// KubeReadyAction polls a cluster until a pod or deployment is ready.
type KubeReadyAction struct {
	defaultContext   string
	defaultNamespace string
	pollInterval     time.Duration

	newClientset func(kubeContext string) (kubernetes.Interface, error)
}

func NewKubeReadyAction(kubeContext, namespace string) *KubeReadyAction {
	if namespace == "" {
		namespace = "default"
	}
	return &KubeReadyAction{
		defaultContext:   kubeContext,
		defaultNamespace: namespace,
		pollInterval:     2 * time.Second,
		newClientset:     newClientsetForContext,
	}
}

func (a *KubeReadyAction) Name() string {
	return "kube_ready"
}

func (a *KubeReadyAction) Run(ctx context.Context, args map[string]any, scope *core.Scope) error {
	kind, err := reqString(args, "kind")
	if err != nil {
		return err
	}
	if kind != "pod" && kind != "deployment" {
		return fmt.Errorf("kind: expected pod or deployment, got %q", kind)
	}

	name, hasName, err := optString(args, "name")
	if err != nil {
		return err
	}
	selector, hasSelector, err := optStringMap(args, "selector")
	if err != nil {
		return err
	}
	switch kind {
	case "pod":
		if hasName == hasSelector {
			return errors.New("exactly one of name or selector is required for pods")
		}
	case "deployment":
		if !hasName {
			return errors.New("name is required for deployments")
		}
	}

	namespace, hasNamespace, err := optString(args, "namespace")
	if err != nil {
		return err
	}
	if !hasNamespace {
		namespace = a.defaultNamespace
	}
	kubeContext, hasContext, err := optString(args, "context")
	if err != nil {
		return err
	}
	if !hasContext {
		kubeContext = a.defaultContext
	}
	timeout, hasTimeout, err := optDuration(args, "timeout")
	if err != nil {
		return err
	}
	if !hasTimeout {
		timeout = 60 * time.Second
	}

	clientset, err := a.newClientset(kubeContext)
	if err != nil {
		return fmt.Errorf("creating Kubernetes client: %w", err)
	}

	target := name
	if !hasName {
		target = labels.SelectorFromSet(labels.Set(selector)).String()
	}
	logging.Debug("actions", "Waiting for %s %s/%s to become ready", kind, namespace, target)

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()
	lastReason := "not checked yet"
	for {
		var ready bool
		var reason string
		switch kind {
		case "pod":
			if hasName {
				ready, reason, err = checkPodByName(ctx, clientset, namespace, name)
			} else {
				ready, reason, err = checkPodsBySelector(ctx, clientset, namespace, selector)
			}
		case "deployment":
			ready, reason, err = checkDeployment(ctx, clientset, namespace, name)
		}
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		lastReason = reason

		if time.Now().After(deadline) {
			return fmt.Errorf("%s %s/%s not ready after %s: %s", kind, namespace, target, timeout, lastReason)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func checkPodByName(ctx context.Context, clientset kubernetes.Interface, namespace, name string) (bool, string, error) {
	pod, err := clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, "pod not found", nil
		}
		return false, "", fmt.Errorf("getting pod %s/%s: %w", namespace, name, err)
	}
	ready, reason := podReady(pod)
	return ready, reason, nil
}

func checkPodsBySelector(ctx context.Context, clientset kubernetes.Interface, namespace string, selector map[string]string) (bool, string, error) {
	labelSelector := labels.SelectorFromSet(labels.Set(selector)).String()
	pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: labelSelector})
	if err != nil {
		return false, "", fmt.Errorf("listing pods in %s: %w", namespace, err)
	}
	if len(pods.Items) == 0 {
		return false, fmt.Sprintf("no pods match %s", labelSelector), nil
	}
	for i := range pods.Items {
		if ready, reason := podReady(&pods.Items[i]); !ready {
			return false, fmt.Sprintf("pod %s: %s", pods.Items[i].Name, reason), nil
		}
	}
	return true, "", nil
}

func podReady(pod *corev1.Pod) (bool, string) {
	if pod.Status.Phase != corev1.PodRunning {
		return false, fmt.Sprintf("phase is %s", pod.Status.Phase)
	}
	readyCondition := false
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			readyCondition = cond.Status == corev1.ConditionTrue
			break
		}
	}
	if !readyCondition {
		return false, "Ready condition is not True"
	}
	for _, cs := range pod.Status.ContainerStatuses {
		if !cs.Ready {
			return false, fmt.Sprintf("container %s is not ready", cs.Name)
		}
	}
	return true, ""
}

func checkDeployment(ctx context.Context, clientset kubernetes.Interface, namespace, name string) (bool, string, error) {
	deploy, err := clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, "deployment not found", nil
		}
		return false, "", fmt.Errorf("getting deployment %s/%s: %w", namespace, name, err)
	}
	want := int32(1)
	if deploy.Spec.Replicas != nil {
		want = *deploy.Spec.Replicas
	}
	if deploy.Status.ReadyReplicas < want {
		return false, fmt.Sprintf("%d/%d replicas ready", deploy.Status.ReadyReplicas, want), nil
	}
	return true, "", nil
}

func newClientsetForContext(kubeContext string) (kubernetes.Interface, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	configOverrides := &clientcmd.ConfigOverrides{}
	if kubeContext != "" {
		configOverrides.CurrentContext = kubeContext
	}
	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)
	restConfig, err := kubeConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("loading kubeconfig: %w", err)
	}
	return kubernetes.NewForConfig(restConfig)
}
